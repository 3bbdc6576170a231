package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"brokeaf/backend/database"
	"brokeaf/backend/middleware"
	"brokeaf/backend/storage"
)

// TestUserID is the user id for authenticated test requests.
const TestUserID = "test-user-id"

// SetupTestAuth adds authentication context to the request
func SetupTestAuth(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, TestUserID)
	return req.WithContext(ctx)
}

// NewTestStore opens a fresh demo store on a throwaway database and
// wraps it in a resolver with no remote store, so handlers run against
// the local store exactly like a demo session. Writes are instant.
func NewTestStore() (*storage.LocalStore, *storage.Resolver, func()) {
	dir, err := os.MkdirTemp("", "demo-store-test")
	if err != nil {
		panic(err)
	}
	db, err := database.Open(filepath.Join(dir, "demo.db"))
	if err != nil {
		panic(err)
	}

	store := storage.NewLocalStore(db)
	store.WriteDelay = 0

	cleanup := func() {
		db.Close()
		os.RemoveAll(dir)
	}
	return store, &storage.Resolver{Demo: store}, cleanup
}

// NewAuthenticatedRequest creates a new HTTP request with a mock authenticated user
func NewAuthenticatedRequest(method, url string, body interface{}) *http.Request {
	var req *http.Request

	if body != nil {
		buf, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewBuffer(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	return SetupTestAuth(req)
}
