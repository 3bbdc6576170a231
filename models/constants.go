package models

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// DemoUserID is the reserved user id for demo sessions. Data for this
// user lives in the local demo store instead of Firestore.
const DemoUserID = "DEMO_USER"

// CategoryNA is the system category transactions fall back to when
// their original category is deleted. It can never be deleted itself.
const CategoryNA = "NA"

// DefaultCategorySet returns the categories seeded into an empty
// collection: the NA sentinel plus the default income and expense
// names. IDs are assigned by the store.
func DefaultCategorySet() []Category {
	// NA needs a type for the schema but is treated as type-agnostic.
	categories := []Category{{Name: CategoryNA, Type: TypeExpense, IsSystem: true}}
	for _, name := range DefaultIncomeCategories {
		categories = append(categories, Category{Name: name, Type: TypeIncome})
	}
	for _, name := range DefaultExpenseCategories {
		categories = append(categories, Category{Name: name, Type: TypeExpense})
	}
	return categories
}

// Default category names seeded into every empty categories collection.
var (
	DefaultIncomeCategories = []string{
		"Salary", "Freelance", "Investments", "Gift", "Other",
	}
	DefaultExpenseCategories = []string{
		"Housing",
		"Transportation",
		"Food",
		"Utilities",
		"Insurance",
		"Healthcare",
		"Savings",
		"Personal",
		"Entertainment",
		"Other",
	}
)
