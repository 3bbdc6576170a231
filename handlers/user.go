package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"

	"brokeaf/backend/middleware"
	"brokeaf/backend/models"
	"brokeaf/backend/storage"
)

// UserHandler serves profile reads and display-field updates. Real
// users live in Firebase; the demo user's profile persists in the
// local store's session record.
type UserHandler struct {
	auth *auth.Client
	demo *storage.LocalStore
}

func NewUserHandler(authClient *auth.Client, demo *storage.LocalStore) *UserHandler {
	return &UserHandler{auth: authClient, demo: demo}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	if userID == models.DemoUserID || h.auth == nil {
		profile, err := h.demo.GetDemoProfile()
		if err != nil {
			log.Printf("Error reading demo profile: %v", err)
			http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, profile)
		return
	}

	record, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.UserProfile{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
	})
}

// UpdateProfile changes the display name and/or photo URL.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if patch.DisplayName == nil && patch.PhotoURL == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if userID == models.DemoUserID || h.auth == nil {
		profile, err := h.demo.GetDemoProfile()
		if err == nil {
			if patch.DisplayName != nil {
				profile.DisplayName = *patch.DisplayName
			}
			if patch.PhotoURL != nil {
				profile.PhotoURL = *patch.PhotoURL
			}
			err = h.demo.SetDemoProfile(profile)
		}
		if err != nil {
			log.Printf("Error updating demo profile: %v", err)
			http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, profile)
		return
	}

	params := &auth.UserToUpdate{}
	if patch.DisplayName != nil {
		params = params.DisplayName(*patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		params = params.PhotoURL(*patch.PhotoURL)
	}

	record, err := h.auth.UpdateUser(r.Context(), userID, params)
	if err != nil {
		log.Printf("Error updating user %s: %v", userID, err)
		http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.UserProfile{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
	})
}
