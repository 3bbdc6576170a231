package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"brokeaf/backend/models"
)

// PageSize is the fixed transaction-list page length.
const PageSize = 15

// Sort keys and orders for the transaction list view.
const (
	SortByDate   = "date"
	SortByAmount = "amount"
	OrderAsc     = "asc"
	OrderDesc    = "desc"
)

// TransactionFilter is the transaction list view's filter state.
// Query matches category, notes, or the stringified amount,
// case-insensitively. Date bounds are inclusive ISO dates; empty
// bounds are open.
type TransactionFilter struct {
	Query     string
	StartDate string
	EndDate   string
}

// FilterTransactions returns the transactions matching f, preserving
// input order.
func FilterTransactions(transactions []models.Transaction, f TransactionFilter) []models.Transaction {
	result := make([]models.Transaction, 0, len(transactions))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	for _, t := range transactions {
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		if f.StartDate != "" && t.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && t.Date > f.EndDate {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesQuery(t models.Transaction, query string) bool {
	if strings.Contains(strings.ToLower(t.Category), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes), query) {
		return true
	}
	amount := strconv.FormatFloat(t.Amount, 'f', -1, 64)
	return strings.Contains(amount, query)
}

// SortTransactions orders transactions in place by date or amount.
// Unknown keys fall back to date; unknown orders to descending.
func SortTransactions(transactions []models.Transaction, key, order string) {
	asc := order == OrderAsc
	sort.SliceStable(transactions, func(i, j int) bool {
		if key == SortByAmount {
			if asc {
				return transactions[i].Amount < transactions[j].Amount
			}
			return transactions[i].Amount > transactions[j].Amount
		}
		a, b := dateValue(transactions[i].Date), dateValue(transactions[j].Date)
		if asc {
			return a.Before(b)
		}
		return a.After(b)
	})
}

func dateValue(date string) time.Time {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Paginate slices out one fixed-size page (1-based). Pages outside the
// range come back empty. The second result is the total page count.
func Paginate(transactions []models.Transaction, page int) ([]models.Transaction, int) {
	totalPages := (len(transactions) + PageSize - 1) / PageSize
	if page < 1 || len(transactions) == 0 {
		return nil, totalPages
	}
	start := (page - 1) * PageSize
	if start >= len(transactions) {
		return nil, totalPages
	}
	end := start + PageSize
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[start:end], totalPages
}
