package budget

import (
	"encoding/json"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

// Style is the display treatment for the remaining amount.
type Style int

const (
	// StyleNormal marks a non-negative remaining amount.
	StyleNormal Style = iota
	// StyleNegative marks an over-budget selection.
	StyleNegative
)

// Allocation is one labelled slice of the selected spending.
type Allocation struct {
	Label  string
	Amount decimal.Decimal
}

// Snapshot is an immutable view of the budget after a recompute.
// TotalExpenses always equals the sum of the selected amounts.
type Snapshot struct {
	MonthlyIncome   decimal.Decimal
	TotalExpenses   decimal.Decimal
	RemainingBudget decimal.Decimal
	Breakdown       []Allocation
	SelectedIDs     []int
}

// TotalDisplay renders the total as "$X.XX".
func (s Snapshot) TotalDisplay() string { return model.FormatMoney(s.TotalExpenses) }

// RemainingDisplay renders the remaining amount as "$X.XX", sign included.
func (s Snapshot) RemainingDisplay() string { return model.FormatMoney(s.RemainingBudget) }

// RemainingStyle is StyleNegative iff the remaining amount is below zero.
func (s Snapshot) RemainingStyle() Style {
	if s.RemainingBudget.IsNegative() {
		return StyleNegative
	}
	return StyleNormal
}

// Payload is the JSON array of selected ids in visual order, as submitted
// in the selected_expenses form field.
func (s Snapshot) Payload() string {
	ids := s.SelectedIDs
	if ids == nil {
		ids = []int{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}
