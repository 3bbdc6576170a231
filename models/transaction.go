package models

type Transaction struct {
	ID        string  `json:"id" firestore:"-"`
	UserID    string  `json:"userId" firestore:"userId"`
	Type      string  `json:"type" firestore:"type"` // income or expense
	Amount    float64 `json:"amount" firestore:"amount"`
	Category  string  `json:"category" firestore:"category"`
	Date      string  `json:"date" firestore:"date"` // ISO date, no time component
	Notes     string  `json:"notes,omitempty" firestore:"notes"`
	CreatedAt int64   `json:"createdAt" firestore:"createdAt"` // epoch milliseconds
}

// TransactionPatch enumerates the fields an update may change. Nil
// fields are left untouched on the stored record.
type TransactionPatch struct {
	Type     *string  `json:"type,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Category *string  `json:"category,omitempty"`
	Date     *string  `json:"date,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// Apply merges the patch into t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}
