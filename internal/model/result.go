package model

import "github.com/shopspring/decimal"

// Result is the outcome of grading one submission. It is either a
// SuccessResult or a FailureResult.
type Result interface {
	Successful() bool
	SimulationID() int
}

// SuccessResult is returned when the selection covers every essential
// expense and fits the income.
type SuccessResult struct {
	SimID         int
	SelectedIDs   []int
	TotalSelected decimal.Decimal
	MonthlyIncome decimal.Decimal
	XPEarned      int
	Feedback      string
}

// Successful implements Result.
func (SuccessResult) Successful() bool { return true }

// SimulationID implements Result.
func (r SuccessResult) SimulationID() int { return r.SimID }

// FailureResult carries everything needed to explain a rejected budget.
type FailureResult struct {
	SimID            int
	Feedback         string
	FeedbackAll      []string
	BudgetDifference decimal.Decimal // income minus total
	TotalSelected    decimal.Decimal
	MonthlyIncome    decimal.Decimal
	MissingEssential []Expense
	Selected         []Expense
	Optional         []Expense
}

// Successful implements Result.
func (FailureResult) Successful() bool { return false }

// SimulationID implements Result.
func (r FailureResult) SimulationID() int { return r.SimID }

// OverBudget reports whether the selection exceeds the income.
func (r FailureResult) OverBudget() bool {
	return r.BudgetDifference.IsNegative()
}
