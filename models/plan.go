package models

type FinancialPlan struct {
	ID            string  `json:"id" firestore:"-"`
	UserID        string  `json:"userId" firestore:"userId"`
	Name          string  `json:"name" firestore:"name"`
	StartDate     string  `json:"startDate" firestore:"startDate"` // inclusive ISO date range
	EndDate       string  `json:"endDate" firestore:"endDate"`
	TargetIncome  float64 `json:"targetIncome" firestore:"targetIncome"`
	TargetSavings float64 `json:"targetSavings" firestore:"targetSavings"`
	CreatedAt     int64   `json:"createdAt" firestore:"createdAt"` // epoch milliseconds
}

// PlanPatch enumerates the fields an update may change.
type PlanPatch struct {
	Name          *string  `json:"name,omitempty"`
	StartDate     *string  `json:"startDate,omitempty"`
	EndDate       *string  `json:"endDate,omitempty"`
	TargetIncome  *float64 `json:"targetIncome,omitempty"`
	TargetSavings *float64 `json:"targetSavings,omitempty"`
}

// Apply merges the patch into p.
func (pp PlanPatch) Apply(p *FinancialPlan) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		p.EndDate = *pp.EndDate
	}
	if pp.TargetIncome != nil {
		p.TargetIncome = *pp.TargetIncome
	}
	if pp.TargetSavings != nil {
		p.TargetSavings = *pp.TargetSavings
	}
}
