package handlers

import (
	"net/http"

	"brokeaf/backend/middleware"
	"brokeaf/backend/models"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

type ReportHandler struct {
	stores *storage.Resolver
}

func NewReportHandler(stores *storage.Resolver) *ReportHandler {
	return &ReportHandler{stores: stores}
}

// filteredTransactions loads the user's transactions and applies the
// shared filter query parameters (q, startDate, endDate) so the
// dashboard can scope every chart by the same date range.
func (h *ReportHandler) filteredTransactions(r *http.Request) ([]models.Transaction, error) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	transactions, err := store.ListTransactions(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	params := r.URL.Query()
	return services.FilterTransactions(transactions, services.TransactionFilter{
		Query:     params.Get("q"),
		StartDate: params.Get("startDate"),
		EndDate:   params.Get("endDate"),
	}), nil
}

// GetSummary returns total income, total expense and balance.
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.filteredTransactions(r)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services.Summarize(transactions))
}

// GetMonthly returns the per-month income/expense series.
func (h *ReportHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.filteredTransactions(r)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services.MonthlySeries(transactions))
}

// GetCategoryBreakdown returns per-category expense totals.
func (h *ReportHandler) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.filteredTransactions(r)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services.CategoryBreakdown(transactions))
}
