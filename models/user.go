package models

// UserProfile is the slice of the identity provider's user object the
// backend cares about: an opaque id plus display fields.
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// ProfilePatch enumerates the updatable profile display fields.
type ProfilePatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}
