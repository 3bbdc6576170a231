package storage

import "errors"

var (
	// ErrNotFound is returned by Update when the target record does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied is returned when the remote store rejects an
	// operation because of a security-rule mismatch. Handlers map it
	// to 403 with remediation guidance for the operator.
	ErrPermissionDenied = errors.New("database permission denied")
)

// PermissionGuidance is surfaced to the operator alongside
// ErrPermissionDenied.
const PermissionGuidance = "Please check your Firestore Security Rules in the Firebase Console. Ensure you allow read/write: if request.auth.uid == userId;"
