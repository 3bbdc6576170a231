package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"brokeaf/backend/middleware"
	"brokeaf/backend/models"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

type TransactionHandler struct {
	stores *storage.Resolver
}

func NewTransactionHandler(stores *storage.Resolver) *TransactionHandler {
	return &TransactionHandler{stores: stores}
}

// transactionPage is the list view response envelope.
type transactionPage struct {
	Items      []models.Transaction `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	PageSize   int                  `json:"pageSize"`
}

// GetTransactions lists one page of the user's transactions, filtered
// and sorted by query parameters: q, startDate, endDate, sortKey
// (date|amount), sortOrder (asc|desc), page.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	transactions, err := store.ListTransactions(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	params := r.URL.Query()
	filtered := services.FilterTransactions(transactions, services.TransactionFilter{
		Query:     params.Get("q"),
		StartDate: params.Get("startDate"),
		EndDate:   params.Get("endDate"),
	})

	sortKey := params.Get("sortKey")
	if sortKey == "" {
		sortKey = services.SortByDate
	}
	sortOrder := params.Get("sortOrder")
	if sortOrder == "" {
		sortOrder = services.OrderDesc
	}
	services.SortTransactions(filtered, sortKey, sortOrder)

	page := 1
	if p, err := strconv.Atoi(params.Get("page")); err == nil && p > 0 {
		page = p
	}
	items, totalPages := services.Paginate(filtered, page)
	if items == nil {
		items = []models.Transaction{}
	}

	writeJSON(w, http.StatusOK, transactionPage{
		Items:      items,
		Total:      len(filtered),
		Page:       page,
		TotalPages: totalPages,
		PageSize:   services.PageSize,
	})
}

func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var t models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if msg := validateTransaction(t); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)
	if err := store.AddTransaction(r.Context(), userID, t); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	var patch models.TransactionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if msg := validateTransactionPatch(patch); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)
	if err := store.UpdateTransaction(r.Context(), userID, id, patch); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteTransaction removes the record. Deleting an id that is
// already gone still reports success.
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	store := h.stores.ForUser(userID)
	if err := store.DeleteTransaction(r.Context(), userID, id); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// StreamTransactions pushes the full transaction list to the client
// as a server-sent event on subscribe and after every change.
func (h *TransactionHandler) StreamTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	payloads := make(chan []byte, 8)
	unsubscribe := store.SubscribeTransactions(r.Context(), userID, func(transactions []models.Transaction) {
		offerPayload(payloads, transactions)
	})
	defer unsubscribe()

	streamEvents(w, r, payloads)
}

func validateTransaction(t models.Transaction) string {
	if t.Type != models.TypeIncome && t.Type != models.TypeExpense {
		return "type must be income or expense"
	}
	if t.Amount < 0 {
		return "amount must not be negative"
	}
	if t.Category == "" {
		return "category is required"
	}
	if t.Date == "" {
		return "date is required"
	}
	return ""
}

func validateTransactionPatch(patch models.TransactionPatch) string {
	if patch.Type != nil && *patch.Type != models.TypeIncome && *patch.Type != models.TypeExpense {
		return "type must be income or expense"
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return "amount must not be negative"
	}
	if patch.Category != nil && *patch.Category == "" {
		return "category must not be empty"
	}
	if patch.Date != nil && *patch.Date == "" {
		return "date must not be empty"
	}
	return ""
}
