package api

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gorilla/mux"

	"brokeaf/backend/handlers"
	"brokeaf/backend/middleware"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

// Deps carries everything the server needs, constructed once at
// startup and torn down by the caller.
type Deps struct {
	AuthClient *auth.Client // nil disables token verification
	Stores     *storage.Resolver
	Demo       *storage.LocalStore
	Insights   *services.InsightService
}

// Server is the HTTP API.
type Server struct {
	router *mux.Router
}

func NewServer(deps Deps) *Server {
	s := &Server{router: mux.NewRouter()}
	s.router.Use(middleware.EnableCORS)

	// Register routes with both direct paths and /api prefix to keep
	// old clients working.
	s.registerRoutes(s.router, deps)
	s.registerRoutes(s.router.PathPrefix("/api").Subrouter(), deps)

	return s
}

func (s *Server) registerRoutes(r *mux.Router, deps Deps) {
	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	authn := middleware.NewAuthenticator(deps.AuthClient)
	protected := r.PathPrefix("").Subrouter()
	protected.Use(authn.Middleware)

	transactions := handlers.NewTransactionHandler(deps.Stores)
	protected.HandleFunc("/transactions", transactions.GetTransactions).Methods("GET")
	protected.HandleFunc("/transactions", transactions.AddTransaction).Methods("POST")
	protected.HandleFunc("/transactions/stream", transactions.StreamTransactions).Methods("GET")
	protected.HandleFunc("/transactions/{id}", transactions.UpdateTransaction).Methods("PUT")
	protected.HandleFunc("/transactions/{id}", transactions.DeleteTransaction).Methods("DELETE")

	categories := handlers.NewCategoryHandler(deps.Stores)
	protected.HandleFunc("/categories", categories.GetCategories).Methods("GET")
	protected.HandleFunc("/categories", categories.AddCategory).Methods("POST")
	protected.HandleFunc("/categories/stream", categories.StreamCategories).Methods("GET")
	protected.HandleFunc("/categories/{id}", categories.DeleteCategory).Methods("DELETE")

	plans := handlers.NewPlanHandler(deps.Stores)
	protected.HandleFunc("/plans", plans.GetPlans).Methods("GET")
	protected.HandleFunc("/plans", plans.AddPlan).Methods("POST")
	protected.HandleFunc("/plans/stream", plans.StreamPlans).Methods("GET")
	protected.HandleFunc("/plans/{id}", plans.UpdatePlan).Methods("PUT")
	protected.HandleFunc("/plans/{id}", plans.DeletePlan).Methods("DELETE")
	protected.HandleFunc("/plans/{id}/progress", plans.GetPlanProgress).Methods("GET")

	reports := handlers.NewReportHandler(deps.Stores)
	protected.HandleFunc("/reports/summary", reports.GetSummary).Methods("GET")
	protected.HandleFunc("/reports/monthly", reports.GetMonthly).Methods("GET")
	protected.HandleFunc("/reports/categories", reports.GetCategoryBreakdown).Methods("GET")

	insights := handlers.NewInsightHandler(deps.Stores, deps.Insights)
	protected.HandleFunc("/insights", insights.GenerateInsights).Methods("POST")

	users := handlers.NewUserHandler(deps.AuthClient, deps.Demo)
	protected.HandleFunc("/users/me", users.GetProfile).Methods("GET")
	protected.HandleFunc("/users/me", users.UpdateProfile).Methods("PUT")
}

// Handler returns the HTTP handler for the API server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the underlying router so the caller can mount static
// assets and the SPA fallback after the API routes.
func (s *Server) Router() *mux.Router {
	return s.router
}
