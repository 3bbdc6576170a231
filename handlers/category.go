package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"brokeaf/backend/middleware"
	"brokeaf/backend/models"
	"brokeaf/backend/storage"
)

type CategoryHandler struct {
	stores *storage.Resolver
}

func NewCategoryHandler(stores *storage.Resolver) *CategoryHandler {
	return &CategoryHandler{stores: stores}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	categories, err := store.ListCategories(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var c models.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if c.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if c.Name == models.CategoryNA {
		http.Error(w, "name is reserved", http.StatusBadRequest)
		return
	}
	if c.Type != models.TypeIncome && c.Type != models.TypeExpense {
		http.Error(w, "type must be income or expense", http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)

	// Names are unique per type; the same name may exist on both an
	// income and an expense category.
	existing, err := store.ListCategories(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	for _, e := range existing {
		if e.Name == c.Name && e.Type == c.Type {
			http.Error(w, "category already exists", http.StatusConflict)
			return
		}
	}

	if err := store.AddCategory(r.Context(), userID, c); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// DeleteCategory removes the category and retargets its transactions
// to NA. The name query parameter identifies which transactions to
// retarget. Deleting the NA sentinel is a no-op.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)
	if err := store.DeleteCategory(r.Context(), userID, id, name); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// StreamCategories pushes the category list on subscribe and after
// every change.
func (h *CategoryHandler) StreamCategories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	payloads := make(chan []byte, 8)
	unsubscribe := store.SubscribeCategories(r.Context(), userID, func(categories []models.Category) {
		offerPayload(payloads, categories)
	})
	defer unsubscribe()

	streamEvents(w, r, payloads)
}
