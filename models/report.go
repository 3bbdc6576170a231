package models

type FinancialSummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

// MonthlyPoint is one month's worth of income and expense, labelled
// "Jan 2024" style.
type MonthlyPoint struct {
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// PlanProgress is the actual-vs-target result for one financial plan.
type PlanProgress struct {
	PlanID          string  `json:"planId"`
	ActualIncome    float64 `json:"actualIncome"`
	ActualSavings   float64 `json:"actualSavings"`
	IncomeProgress  float64 `json:"incomeProgress"`  // 0-100
	SavingsProgress float64 `json:"savingsProgress"` // 0-100
	SavingsNegative bool    `json:"savingsNegative"`
}
