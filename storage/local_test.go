package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"brokeaf/backend/database"
	"brokeaf/backend/models"
)

// newTestStore opens a demo store on a database file in a temp
// directory. Reusing the path lets tests reopen the same data.
func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.db")
	store := openTestStore(t, path)
	return store, path
}

func openTestStore(t *testing.T, path string) *LocalStore {
	t.Helper()

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("Error opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewLocalStore(db)
	store.WriteDelay = 0
	return store
}

func TestListTransactionsSeedsSampleData(t *testing.T) {
	store, _ := newTestStore(t)

	transactions, err := store.ListTransactions(context.Background(), models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing transactions: %v", err)
	}

	if len(transactions) != 3 {
		t.Fatalf("Expected 3 seeded transactions, got %d", len(transactions))
	}

	// Sorted by date descending, like the remote store's query.
	if transactions[0].ID != "demo-tx-3" || transactions[2].ID != "demo-tx-1" {
		t.Errorf("Expected date-descending order, got %s..%s", transactions[0].ID, transactions[2].ID)
	}

	// Seeding happens once; a second list returns the same data.
	again, err := store.ListTransactions(context.Background(), models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing transactions again: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("Expected 3 transactions on second list, got %d", len(again))
	}
}

func TestAddTransaction(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.AddTransaction(ctx, models.DemoUserID, models.Transaction{
		Type:     models.TypeExpense,
		Amount:   75,
		Category: "Transportation",
		Date:     "2024-03-01",
		Notes:    "Bus pass",
	})
	if err != nil {
		t.Fatalf("Error adding transaction: %v", err)
	}

	transactions, err := store.ListTransactions(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}

	added := transactions[0]
	if added.ID == "" {
		t.Error("Expected store to assign an id")
	}
	if added.CreatedAt == 0 {
		t.Error("Expected store to assign a creation timestamp")
	}
	if added.UserID != models.DemoUserID {
		t.Errorf("Expected user id %s, got %s", models.DemoUserID, added.UserID)
	}
	if added.Amount != 75 || added.Category != "Transportation" {
		t.Errorf("Expected stored values to round-trip, got %+v", added)
	}
}

func TestUpdateTransaction(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	transactions, err := store.ListTransactions(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing transactions: %v", err)
	}
	target := transactions[0]

	amount := 999.0
	notes := "Adjusted"
	err = store.UpdateTransaction(ctx, models.DemoUserID, target.ID, models.TransactionPatch{
		Amount: &amount,
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("Error updating transaction: %v", err)
	}

	transactions, _ = store.ListTransactions(ctx, models.DemoUserID)
	for _, tx := range transactions {
		if tx.ID != target.ID {
			continue
		}
		if tx.Amount != 999 {
			t.Errorf("Expected amount 999, got %v", tx.Amount)
		}
		if tx.Notes != "Adjusted" {
			t.Errorf("Expected notes 'Adjusted', got '%s'", tx.Notes)
		}
		// Untouched fields survive the patch.
		if tx.Category != target.Category || tx.Date != target.Date {
			t.Errorf("Expected unpatched fields to survive, got %+v", tx)
		}
	}
}

func TestUpdateTransactionEmptyPatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seeded, err := store.ListTransactions(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing transactions: %v", err)
	}

	// An empty patch on an existing record succeeds and changes nothing.
	if err := store.UpdateTransaction(ctx, models.DemoUserID, seeded[0].ID, models.TransactionPatch{}); err != nil {
		t.Fatalf("Error applying empty patch: %v", err)
	}
	after, _ := store.ListTransactions(ctx, models.DemoUserID)
	if after[0] != seeded[0] {
		t.Errorf("Expected record unchanged by empty patch, got %+v", after[0])
	}

	// An empty patch on a missing record still fails.
	err = store.UpdateTransaction(ctx, models.DemoUserID, "missing-id", models.TransactionPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for empty patch on missing id, got %v", err)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	amount := 1.0
	err := store.UpdateTransaction(context.Background(), models.DemoUserID, "missing-id",
		models.TransactionPatch{Amount: &amount})

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.ListTransactions(ctx, models.DemoUserID) // seed

	if err := store.DeleteTransaction(ctx, models.DemoUserID, "demo-tx-1"); err != nil {
		t.Fatalf("Error deleting transaction: %v", err)
	}
	// Deleting again still succeeds.
	if err := store.DeleteTransaction(ctx, models.DemoUserID, "demo-tx-1"); err != nil {
		t.Fatalf("Error on repeat delete: %v", err)
	}

	transactions, _ := store.ListTransactions(ctx, models.DemoUserID)
	if len(transactions) != 2 {
		t.Errorf("Expected 2 transactions after delete, got %d", len(transactions))
	}
}

func TestListCategoriesSeedsDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	categories, err := store.ListCategories(context.Background(), models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing categories: %v", err)
	}

	expected := 1 + len(models.DefaultIncomeCategories) + len(models.DefaultExpenseCategories)
	if len(categories) != expected {
		t.Fatalf("Expected %d seeded categories, got %d", expected, len(categories))
	}

	var foundNA bool
	for i, c := range categories {
		if c.ID == "" {
			t.Errorf("Expected every category to get an id, %s has none", c.Name)
		}
		if c.Name == models.CategoryNA {
			foundNA = true
			if !c.IsSystem {
				t.Error("Expected NA sentinel to be a system category")
			}
		}
		// Sorted by name ascending.
		if i > 0 && categories[i-1].Name > c.Name {
			t.Errorf("Expected name-ascending order, got %s before %s", categories[i-1].Name, c.Name)
		}
	}
	if !foundNA {
		t.Error("Expected NA sentinel among seeded categories")
	}
}

func TestDeleteCategoryCascade(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Seed both collections; the sample transactions reference Food.
	store.ListTransactions(ctx, models.DemoUserID)
	categories, err := store.ListCategories(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing categories: %v", err)
	}

	var food models.Category
	for _, c := range categories {
		if c.Name == "Food" && c.Type == models.TypeExpense {
			food = c
		}
	}
	if food.ID == "" {
		t.Fatal("Expected seeded Food category")
	}

	if err := store.DeleteCategory(ctx, models.DemoUserID, food.ID, food.Name); err != nil {
		t.Fatalf("Error deleting category: %v", err)
	}

	categories, _ = store.ListCategories(ctx, models.DemoUserID)
	for _, c := range categories {
		if c.ID == food.ID {
			t.Error("Expected Food category to be gone")
		}
	}

	transactions, _ := store.ListTransactions(ctx, models.DemoUserID)
	var naCount int
	for _, tx := range transactions {
		if tx.Category == "Food" {
			t.Errorf("Expected no transaction to still reference Food, found %s", tx.ID)
		}
		if tx.Category == models.CategoryNA {
			naCount++
		}
	}
	if naCount != 1 {
		t.Errorf("Expected 1 transaction retargeted to NA, got %d", naCount)
	}
}

func TestDeleteCategorySentinelIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	categories, err := store.ListCategories(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing categories: %v", err)
	}

	var na models.Category
	for _, c := range categories {
		if c.Name == models.CategoryNA {
			na = c
		}
	}

	if err := store.DeleteCategory(ctx, models.DemoUserID, na.ID, na.Name); err != nil {
		t.Fatalf("Error deleting sentinel: %v", err)
	}

	after, _ := store.ListCategories(ctx, models.DemoUserID)
	if len(after) != len(categories) {
		t.Errorf("Expected category count unchanged, got %d -> %d", len(categories), len(after))
	}
}

func TestPlanLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.AddPlan(ctx, models.DemoUserID, models.FinancialPlan{
		Name:          "January budget",
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-31",
		TargetIncome:  2500,
		TargetSavings: 1000,
	})
	if err != nil {
		t.Fatalf("Error adding plan: %v", err)
	}

	plans, err := store.ListPlans(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing plans: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("Expected 1 plan, got %d", len(plans))
	}
	plan := plans[0]
	if plan.ID == "" || plan.CreatedAt == 0 {
		t.Errorf("Expected store-assigned id and timestamp, got %+v", plan)
	}

	target := 1500.0
	err = store.UpdatePlan(ctx, models.DemoUserID, plan.ID, models.PlanPatch{TargetSavings: &target})
	if err != nil {
		t.Fatalf("Error updating plan: %v", err)
	}

	plans, _ = store.ListPlans(ctx, models.DemoUserID)
	if plans[0].TargetSavings != 1500 {
		t.Errorf("Expected target savings 1500, got %v", plans[0].TargetSavings)
	}
	if plans[0].Name != "January budget" {
		t.Errorf("Expected unpatched name to survive, got '%s'", plans[0].Name)
	}

	if err := store.DeletePlan(ctx, models.DemoUserID, plan.ID); err != nil {
		t.Fatalf("Error deleting plan: %v", err)
	}
	plans, _ = store.ListPlans(ctx, models.DemoUserID)
	if len(plans) != 0 {
		t.Errorf("Expected no plans after delete, got %d", len(plans))
	}
}

func TestSubscribeTransactions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var snapshots [][]models.Transaction
	unsubscribe := store.SubscribeTransactions(ctx, models.DemoUserID, func(transactions []models.Transaction) {
		snapshots = append(snapshots, transactions)
	})

	// The initial snapshot arrives synchronously with the seed data.
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 initial snapshot, got %d", len(snapshots))
	}
	if len(snapshots[0]) != 3 {
		t.Errorf("Expected 3 seeded transactions in snapshot, got %d", len(snapshots[0]))
	}

	err := store.AddTransaction(ctx, models.DemoUserID, models.Transaction{
		Type:     models.TypeExpense,
		Amount:   30,
		Category: "Food",
		Date:     "2024-02-01",
	})
	if err != nil {
		t.Fatalf("Error adding transaction: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("Expected a snapshot after the mutation, got %d total", len(snapshots))
	}
	if len(snapshots[1]) != 4 {
		t.Errorf("Expected 4 transactions in second snapshot, got %d", len(snapshots[1]))
	}

	unsubscribe()
	store.DeleteTransaction(ctx, models.DemoUserID, "demo-tx-1")

	if len(snapshots) != 2 {
		t.Errorf("Expected no snapshots after unsubscribe, got %d total", len(snapshots))
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	err := store.AddTransaction(ctx, models.DemoUserID, models.Transaction{
		Type:     models.TypeIncome,
		Amount:   300,
		Category: "Freelance",
		Date:     "2024-02-15",
	})
	if err != nil {
		t.Fatalf("Error adding transaction: %v", err)
	}

	// A second store over the same database sees the same data.
	reopened := openTestStore(t, path)
	transactions, err := reopened.ListTransactions(ctx, models.DemoUserID)
	if err != nil {
		t.Fatalf("Error listing from reopened store: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 persisted transaction, got %d", len(transactions))
	}
	if transactions[0].Category != "Freelance" {
		t.Errorf("Expected persisted category 'Freelance', got '%s'", transactions[0].Category)
	}
}

func TestDemoProfile(t *testing.T) {
	store, _ := newTestStore(t)

	profile, err := store.GetDemoProfile()
	if err != nil {
		t.Fatalf("Error reading default profile: %v", err)
	}
	if profile.UID != models.DemoUserID {
		t.Errorf("Expected demo uid, got '%s'", profile.UID)
	}
	if profile.DisplayName == "" {
		t.Error("Expected a default display name")
	}

	profile.DisplayName = "Thrifty"
	if err := store.SetDemoProfile(profile); err != nil {
		t.Fatalf("Error saving profile: %v", err)
	}

	saved, err := store.GetDemoProfile()
	if err != nil {
		t.Fatalf("Error reading saved profile: %v", err)
	}
	if saved.DisplayName != "Thrifty" {
		t.Errorf("Expected display name 'Thrifty', got '%s'", saved.DisplayName)
	}
}
