// Package wire defines the JSON shapes exchanged between the budgetsim
// server and its clients, and converts them to and from domain types.
package wire

import (
	"encoding/json"
	"time"
)

// Expense is an expense as sent over the wire. Amounts are plain numbers.
type Expense struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Essential bool    `json:"essential"`
	Feedback  string  `json:"feedback,omitempty"`
}

// SimulationInfo describes a simulation without its expenses.
type SimulationInfo struct {
	ID                int    `json:"id"`
	Question          string `json:"question"`
	Category          string `json:"category"`
	CategoryDisplay   string `json:"category_display"`
	Difficulty        string `json:"difficulty"`
	DifficultyDisplay string `json:"difficulty_display"`
}

// SimulationPage is everything the play view needs to render a simulation.
type SimulationPage struct {
	Simulation    SimulationInfo `json:"simulation"`
	MonthlyIncome float64        `json:"monthly_income"`
	Expenses      []Expense      `json:"expenses"`
}

// SimulationSummary is one row of the simulation listing.
type SimulationSummary struct {
	SimulationInfo
	MonthlyIncome float64 `json:"monthly_income"`
	ExpenseCount  int     `json:"expense_count"`
}

// SubmitResponse is the graded result of a submission. SelectedExpenses is
// an id list on success and an object list on failure.
type SubmitResponse struct {
	IsSuccessful     bool            `json:"is_successful"`
	SimulationID     int             `json:"simulation_id"`
	RandomFeedback   *string         `json:"random_feedback"`
	Feedback         []string        `json:"feedback"`
	TotalSelected    float64         `json:"total_selected"`
	MonthlyIncome    float64         `json:"monthly_income"`
	BudgetDifference float64         `json:"budget_difference"`
	XPEarned         int             `json:"xp_earned"`
	MissingEssential []Expense       `json:"missing_essential"`
	OptionalExpenses []Expense       `json:"optional_expenses,omitempty"`
	SelectedExpenses json.RawMessage `json:"selected_expenses"`
	Category         string          `json:"category,omitempty"`
}

// ChartSlice is one pie slice as rendered on the result page.
type ChartSlice struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke"`
}

// ResultPage is the data behind the result page.
type ResultPage struct {
	Simulation       SimulationInfo `json:"simulation"`
	Selected         []Expense      `json:"selected"`
	TotalSelected    float64        `json:"total_selected"`
	MonthlyIncome    float64        `json:"monthly_income"`
	BudgetDifference float64        `json:"budget_difference"`
	Chart            []ChartSlice   `json:"chart"`
}

// Event is one graded submission as reported on the event stream.
type Event struct {
	ID            string    `json:"id"`
	At            time.Time `json:"at"`
	PlayerID      string    `json:"player_id"`
	SimulationID  int       `json:"simulation_id"`
	Successful    bool      `json:"successful"`
	TotalSelected float64   `json:"total_selected"`
	XPEarned      int       `json:"xp_earned"`
}

// Status is the server health and activity summary.
type Status struct {
	StartedAt      time.Time `json:"started_at"`
	Simulations    int       `json:"simulations"`
	Submissions    int64     `json:"submissions"`
	Successes      int64     `json:"successes"`
	Subscribers    int       `json:"subscribers"`
	LastError      string    `json:"last_error,omitempty"`
	LastSubmitAt   time.Time `json:"last_submit_at"`
	EventsBuffered int       `json:"events_buffered"`
}

// Progress is a player's aggregated progress.
type Progress struct {
	PlayerID     string         `json:"player_id"`
	Attempts     int            `json:"attempts"`
	Successes    int            `json:"successes"`
	SuccessRate  float64        `json:"success_rate"`
	Completions  int            `json:"completions"`
	TotalXP      int            `json:"total_xp"`
	XPByCategory map[string]int `json:"xp_by_category"`
	ByDifficulty map[string]int `json:"by_difficulty"`
}

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Error string `json:"error"`
}
