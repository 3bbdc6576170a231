package handlers

import (
	"net/http"

	"brokeaf/backend/middleware"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

type InsightHandler struct {
	stores   *storage.Resolver
	insights *services.InsightService
}

func NewInsightHandler(stores *storage.Resolver, insights *services.InsightService) *InsightHandler {
	return &InsightHandler{stores: stores, insights: insights}
}

type insightResponse struct {
	Insights string `json:"insights"`
}

// GenerateInsights summarizes the user's recent transactions through
// the AI service. AI failures come back as placeholder text with a
// 200, never as an error response.
func (h *InsightHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	// Transactions arrive date-descending, so the prompt sees the
	// most recent ones.
	transactions, err := store.ListTransactions(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	text := h.insights.GenerateInsights(r.Context(), transactions)
	writeJSON(w, http.StatusOK, insightResponse{Insights: text})
}
