package services

import (
	"sort"
	"time"

	"brokeaf/backend/models"
)

// Aggregations over transaction lists. All functions here are pure:
// they never touch a store and an empty input yields zero values.

// Summarize totals income and expense and computes the balance.
func Summarize(transactions []models.Transaction) models.FinancialSummary {
	var summary models.FinancialSummary
	for _, t := range transactions {
		if t.Type == models.TypeIncome {
			summary.TotalIncome += t.Amount
			summary.Balance += t.Amount
		} else {
			summary.TotalExpense += t.Amount
			summary.Balance -= t.Amount
		}
	}
	return summary
}

// MonthlySeries groups transactions by calendar month, labelled
// "Jan 2024", ordered chronologically ascending. Transactions with an
// unparseable date are skipped.
func MonthlySeries(transactions []models.Transaction) []models.MonthlyPoint {
	type bucket struct {
		key   int // year*12 + month, for chronological ordering
		point models.MonthlyPoint
	}
	buckets := make(map[int]*bucket)

	for _, t := range transactions {
		date, err := time.Parse(time.DateOnly, t.Date)
		if err != nil {
			continue
		}
		key := date.Year()*12 + int(date.Month()) - 1
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, point: models.MonthlyPoint{Label: date.Format("Jan 2006")}}
			buckets[key] = b
		}
		if t.Type == models.TypeIncome {
			b.point.Income += t.Amount
		} else {
			b.point.Expense += t.Amount
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].key < ordered[j].key
	})

	series := make([]models.MonthlyPoint, 0, len(ordered))
	for _, b := range ordered {
		series = append(series, b.point)
	}
	return series
}

// CategoryBreakdown sums expense amounts per category name. Income
// transactions are ignored. The result order is unspecified.
func CategoryBreakdown(transactions []models.Transaction) []models.CategoryTotal {
	totals := make(map[string]float64)
	var names []string
	for _, t := range transactions {
		if t.Type != models.TypeExpense {
			continue
		}
		if _, ok := totals[t.Category]; !ok {
			names = append(names, t.Category)
		}
		totals[t.Category] += t.Amount
	}

	breakdown := make([]models.CategoryTotal, 0, len(names))
	for _, name := range names {
		breakdown = append(breakdown, models.CategoryTotal{Category: name, Total: totals[name]})
	}
	return breakdown
}

// PlanProgress measures actuals against a plan's targets using the
// transactions dated within the plan's inclusive range.
func PlanProgress(plan models.FinancialPlan, transactions []models.Transaction) models.PlanProgress {
	var actualIncome, actualExpense float64
	for _, t := range transactions {
		if t.Date < plan.StartDate || t.Date > plan.EndDate {
			continue
		}
		if t.Type == models.TypeIncome {
			actualIncome += t.Amount
		} else {
			actualExpense += t.Amount
		}
	}
	actualSavings := actualIncome - actualExpense

	return models.PlanProgress{
		PlanID:          plan.ID,
		ActualIncome:    actualIncome,
		ActualSavings:   actualSavings,
		IncomeProgress:  progressPercent(actualIncome, plan.TargetIncome),
		SavingsProgress: progressPercent(actualSavings, plan.TargetSavings),
		SavingsNegative: actualSavings < 0,
	}
}

// progressPercent clamps at 100. A target of zero (or less) counts as
// met once the actual reaches it, and 0% otherwise, so the percentage
// stays finite.
func progressPercent(actual, target float64) float64 {
	if target <= 0 {
		if actual >= target {
			return 100
		}
		return 0
	}
	pct := actual / target * 100
	if pct > 100 {
		return 100
	}
	return pct
}
