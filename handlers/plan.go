package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"brokeaf/backend/middleware"
	"brokeaf/backend/models"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

type PlanHandler struct {
	stores *storage.Resolver
}

func NewPlanHandler(stores *storage.Resolver) *PlanHandler {
	return &PlanHandler{stores: stores}
}

func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	plans, err := store.ListPlans(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	if plans == nil {
		plans = []models.FinancialPlan{}
	}

	writeJSON(w, http.StatusOK, plans)
}

func (h *PlanHandler) AddPlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var p models.FinancialPlan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if p.Name == "" || p.StartDate == "" || p.EndDate == "" {
		http.Error(w, "name, startDate and endDate are required", http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)
	if err := store.AddPlan(r.Context(), userID, p); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *PlanHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	var patch models.PlanPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	store := h.stores.ForUser(userID)
	if err := store.UpdatePlan(r.Context(), userID, id, patch); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	store := h.stores.ForUser(userID)
	if err := store.DeletePlan(r.Context(), userID, id); err != nil {
		handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetPlanProgress reports actual income and savings against the
// plan's targets for transactions inside its date range.
func (h *PlanHandler) GetPlanProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]
	store := h.stores.ForUser(userID)

	plans, err := store.ListPlans(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	var plan *models.FinancialPlan
	for i := range plans {
		if plans[i].ID == id {
			plan = &plans[i]
			break
		}
	}
	if plan == nil {
		http.Error(w, "plan not found", http.StatusNotFound)
		return
	}

	transactions, err := store.ListTransactions(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, services.PlanProgress(*plan, transactions))
}

// StreamPlans pushes the plan list on subscribe and after every
// change.
func (h *PlanHandler) StreamPlans(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	store := h.stores.ForUser(userID)

	payloads := make(chan []byte, 8)
	unsubscribe := store.SubscribePlans(r.Context(), userID, func(plans []models.FinancialPlan) {
		offerPayload(payloads, plans)
	})
	defer unsubscribe()

	streamEvents(w, r, payloads)
}
