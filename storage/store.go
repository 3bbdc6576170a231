package storage

import (
	"context"

	"brokeaf/backend/models"
)

// Unsubscribe tears down a live subscription. Safe to call more than
// once.
type Unsubscribe func()

// Store is the persistence surface for one entity namespace. Both the
// Firestore-backed remote store and the sqlite-backed demo store
// implement it with identical semantics: Add assigns the id and
// creation timestamp, Update fails for an absent id, Delete is
// idempotent, Subscribe invokes the callback immediately with the
// current collection and again after every change.
type Store interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	AddTransaction(ctx context.Context, userID string, t models.Transaction) error
	UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	SubscribeTransactions(ctx context.Context, userID string, fn func([]models.Transaction)) Unsubscribe

	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	AddCategory(ctx context.Context, userID string, c models.Category) error
	// DeleteCategory removes the category and retargets every
	// transaction referencing it to the NA sentinel. Deleting the
	// sentinel itself is a no-op.
	DeleteCategory(ctx context.Context, userID, id, name string) error
	SubscribeCategories(ctx context.Context, userID string, fn func([]models.Category)) Unsubscribe

	ListPlans(ctx context.Context, userID string) ([]models.FinancialPlan, error)
	AddPlan(ctx context.Context, userID string, p models.FinancialPlan) error
	UpdatePlan(ctx context.Context, userID, id string, patch models.PlanPatch) error
	DeletePlan(ctx context.Context, userID, id string) error
	SubscribePlans(ctx context.Context, userID string, fn func([]models.FinancialPlan)) Unsubscribe
}

// Resolver picks the store backing a user id. The demo sentinel user
// maps to the local store; everyone else goes to the remote store.
// When no remote store is configured (local development without
// Firebase credentials) every user falls back to the demo store.
type Resolver struct {
	Remote Store
	Demo   Store
}

func (r *Resolver) ForUser(userID string) Store {
	if userID == models.DemoUserID || r.Remote == nil {
		return r.Demo
	}
	return r.Remote
}
