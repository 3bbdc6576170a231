package models

import "testing"

func TestTransactionPatchApply(t *testing.T) {
	original := Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Type:      TypeExpense,
		Amount:    450,
		Category:  "Food",
		Date:      "2024-01-12",
		Notes:     "Groceries",
		CreatedAt: 1705017600000,
	}

	amount := 500.0
	notes := "Groceries and supplies"
	patch := TransactionPatch{Amount: &amount, Notes: &notes}

	updated := original
	patch.Apply(&updated)

	if updated.Amount != 500 {
		t.Errorf("Expected amount 500, got %v", updated.Amount)
	}
	if updated.Notes != "Groceries and supplies" {
		t.Errorf("Expected patched notes, got '%s'", updated.Notes)
	}

	// Nil fields leave the record untouched.
	if updated.Type != original.Type || updated.Category != original.Category ||
		updated.Date != original.Date || updated.CreatedAt != original.CreatedAt {
		t.Errorf("Expected unpatched fields to survive, got %+v", updated)
	}
}

func TestTransactionPatchApplyEmpty(t *testing.T) {
	original := Transaction{Type: TypeIncome, Amount: 2500, Category: "Salary", Date: "2024-01-05"}

	updated := original
	TransactionPatch{}.Apply(&updated)

	if updated != original {
		t.Errorf("Expected empty patch to change nothing, got %+v", updated)
	}
}

func TestDefaultCategorySet(t *testing.T) {
	categories := DefaultCategorySet()

	expected := 1 + len(DefaultIncomeCategories) + len(DefaultExpenseCategories)
	if len(categories) != expected {
		t.Fatalf("Expected %d categories, got %d", expected, len(categories))
	}

	if categories[0].Name != CategoryNA || !categories[0].IsSystem {
		t.Errorf("Expected NA system sentinel first, got %+v", categories[0])
	}

	for _, c := range categories[1:] {
		if c.IsSystem {
			t.Errorf("Expected only the sentinel to be a system category, %s is too", c.Name)
		}
		if c.Type != TypeIncome && c.Type != TypeExpense {
			t.Errorf("Expected a valid type on %s, got '%s'", c.Name, c.Type)
		}
	}
}
