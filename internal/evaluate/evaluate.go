// Package evaluate grades a player's expense selection against a simulation.
package evaluate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownExpense is returned for ids that are not part of the simulation.
	ErrUnknownExpense = errors.New("expense not in simulation")
	// ErrDuplicateExpense is returned when an id is submitted twice.
	ErrDuplicateExpense = errors.New("expense selected twice")
)

// Outcome is the graded selection before any progress is recorded.
type Outcome struct {
	SimulationID  int
	Successful    bool
	WithinBudget  bool
	TotalSelected decimal.Decimal
	MonthlyIncome decimal.Decimal
	Selected      []model.Expense
	Missing       []model.Expense
	Optional      []model.Expense // non-essential selections, only when over budget
	Feedback      []string
}

// Difference is income minus the selected total.
func (o Outcome) Difference() decimal.Decimal {
	return o.MonthlyIncome.Sub(o.TotalSelected)
}

// SelectedIDs returns the ids of the selected expenses in submission order.
func (o Outcome) SelectedIDs() []int {
	ids := make([]int, len(o.Selected))
	for i, e := range o.Selected {
		ids[i] = e.ID
	}
	return ids
}

// Evaluate checks that every essential expense is selected and that the
// total fits the monthly income.
func Evaluate(sim *model.Simulation, selectedIDs []int) (Outcome, error) {
	out := Outcome{
		SimulationID:  sim.ID,
		TotalSelected: decimal.Zero,
		MonthlyIncome: sim.MonthlyIncome,
		Selected:      make([]model.Expense, 0, len(selectedIDs)),
	}

	seen := make(map[int]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		if seen[id] {
			return Outcome{}, fmt.Errorf("expense %d: %w", id, ErrDuplicateExpense)
		}
		seen[id] = true
		e, ok := sim.Expense(id)
		if !ok {
			return Outcome{}, fmt.Errorf("expense %d: %w", id, ErrUnknownExpense)
		}
		out.Selected = append(out.Selected, e)
		out.TotalSelected = out.TotalSelected.Add(e.Amount)
	}

	for _, e := range sim.Expenses {
		if e.Essential && !seen[e.ID] {
			out.Missing = append(out.Missing, e)
			out.Feedback = append(out.Feedback, fmt.Sprintf("%s: %s", e.Name, e.Feedback))
		}
	}

	out.WithinBudget = out.TotalSelected.LessThanOrEqual(sim.MonthlyIncome)
	if !out.WithinBudget {
		out.Feedback = append(out.Feedback, fmt.Sprintf(
			"Your selected expenses (%s) exceed your monthly income (%s).",
			model.FormatMoney(out.TotalSelected), model.FormatMoney(sim.MonthlyIncome)))
		for _, e := range out.Selected {
			if !e.Essential {
				out.Optional = append(out.Optional, e)
			}
		}
	}

	out.Successful = out.WithinBudget && len(out.Missing) == 0
	return out, nil
}

// SuccessMessage is the feedback line for a passing budget. xp is zero for
// repeat completions.
func SuccessMessage(xp int, category model.Category) string {
	if xp > 0 {
		return fmt.Sprintf("Great job! You've earned %d %s XP.", xp, category.Display())
	}
	return "Great job creating a balanced budget!"
}

// Picker chooses one feedback line to headline a result. It is safe for
// concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a Picker seeded from seed. A zero seed picks randomly.
func NewPicker(seed uint64) *Picker {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns a random line, or "" if there are none.
func (p *Picker) Pick(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[p.Index(len(lines))]
}

// Index returns a random index in [0, n). n must be positive.
func (p *Picker) Index(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// Result turns an outcome into the tagged result sent to the player.
// xp is what the completion earned (zero on repeats).
func Result(sim *model.Simulation, o Outcome, xp int, p *Picker) model.Result {
	if o.Successful {
		msg := SuccessMessage(xp, sim.Category)
		return model.SuccessResult{
			SimID:         sim.ID,
			SelectedIDs:   o.SelectedIDs(),
			TotalSelected: o.TotalSelected,
			MonthlyIncome: o.MonthlyIncome,
			XPEarned:      xp,
			Feedback:      msg,
		}
	}
	return model.FailureResult{
		SimID:            sim.ID,
		Feedback:         p.Pick(o.Feedback),
		FeedbackAll:      o.Feedback,
		BudgetDifference: o.Difference(),
		TotalSelected:    o.TotalSelected,
		MonthlyIncome:    o.MonthlyIncome,
		MissingEssential: o.Missing,
		Selected:         o.Selected,
		Optional:         o.Optional,
	}
}
