package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"brokeaf/backend/models"
)

// Define context keys
type contextKey string

const UserIDKey contextKey = "user_id"

// DemoToken is the bearer token a demo session presents instead of a
// Firebase ID token.
const DemoToken = "demo"

// Authenticator verifies Firebase ID tokens and stamps the resolved
// user id onto the request context. A nil auth client disables
// verification (local development without Firebase credentials) and
// every request runs as the demo user.
type Authenticator struct {
	client *auth.Client
}

func NewAuthenticator(client *auth.Client) *Authenticator {
	return &Authenticator{client: client}
}

// Middleware authenticates requests from the Authorization header.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		idToken := extractToken(r.Header.Get("Authorization"))

		// Demo sessions bypass Firebase entirely.
		if idToken == DemoToken {
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), models.DemoUserID)))
			return
		}

		if a.client == nil {
			// No Firebase configured; run everything as the demo user.
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), models.DemoUserID)))
			return
		}

		if idToken == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		token, err := a.client.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			log.Printf("Error verifying token: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), token.UID)))
	})
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// extractToken gets the token from the Authorization header.
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return parts[1]
}

// GetUserIDFromContext retrieves the user ID from the request context.
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
