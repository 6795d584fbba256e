// Package model defines domain types for budgeting simulations and their results.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups simulations by financial topic.
type Category string

// Simulation categories, stored by code.
const (
	CategoryBudget    Category = "BUD"
	CategoryInvesting Category = "INV"
	CategorySavings   Category = "SAV"
	CategoryBalance   Category = "BAL"
	CategoryCredit    Category = "CRD"
	CategoryTaxes     Category = "TAX"
)

var categoryInfo = []struct {
	code    Category
	slug    string
	display string
}{
	{CategoryBudget, "budget", "Budgeting"},
	{CategoryInvesting, "investing", "Investing"},
	{CategorySavings, "savings", "Savings"},
	{CategoryBalance, "balance", "Balance"},
	{CategoryCredit, "credit", "Credit"},
	{CategoryTaxes, "taxes", "Taxes"},
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryInfo))
	for i, c := range categoryInfo {
		out[i] = c.code
	}
	return out
}

// ParseCategory accepts a code ("BUD") or URL slug ("budget"), case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categoryInfo {
		if strings.EqualFold(s, string(c.code)) || strings.EqualFold(s, c.slug) {
			return c.code, true
		}
	}
	return "", false
}

// Slug returns the URL form of the category.
func (c Category) Slug() string {
	for _, ci := range categoryInfo {
		if ci.code == c {
			return ci.slug
		}
	}
	return strings.ToLower(string(c))
}

// Display returns the human-readable category name.
func (c Category) Display() string {
	for _, ci := range categoryInfo {
		if ci.code == c {
			return ci.display
		}
	}
	return string(c)
}

// Difficulty is the simulation difficulty code.
type Difficulty string

// Difficulty levels.
const (
	Beginner     Difficulty = "B"
	Intermediate Difficulty = "I"
	Advanced     Difficulty = "A"
)

// ParseDifficulty accepts a code ("B") or name ("beginner"), case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "beginner":
		return Beginner, true
	case "i", "intermediate":
		return Intermediate, true
	case "a", "advanced":
		return Advanced, true
	}
	return "", false
}

// Display returns the human-readable difficulty name.
func (d Difficulty) Display() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	}
	return string(d)
}

// Expense is one line item the player can place in the budget.
type Expense struct {
	ID        int
	Name      string
	Amount    decimal.Decimal
	Essential bool
	Feedback  string
}

// Simulation is a budgeting scenario: an income and a pool of expenses.
type Simulation struct {
	ID            int
	Question      string
	Category      Category
	Difficulty    Difficulty
	MonthlyIncome decimal.Decimal
	Expenses      []Expense
}

// Expense looks up an expense by id.
func (s *Simulation) Expense(id int) (Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// EssentialTotal sums the amounts of all essential expenses.
func (s *Simulation) EssentialTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Expenses {
		if e.Essential {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// SimulationSummary is the list-view projection of a simulation.
type SimulationSummary struct {
	ID            int
	Question      string
	Category      Category
	Difficulty    Difficulty
	MonthlyIncome decimal.Decimal
	ExpenseCount  int
}

// FormatMoney renders an amount as "$" followed by two decimals, e.g. "$-500.00".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
