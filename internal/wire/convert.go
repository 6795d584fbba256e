package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

// ErrMalformed is returned when a response cannot be mapped to a result.
var ErrMalformed = errors.New("malformed response")

// FromExpense converts a domain expense.
func FromExpense(e model.Expense) Expense {
	return Expense{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    e.Amount.InexactFloat64(),
		Essential: e.Essential,
		Feedback:  e.Feedback,
	}
}

// FromExpenses converts a slice of domain expenses. A nil input gives an
// empty, non-nil slice so it encodes as [].
func FromExpenses(es []model.Expense) []Expense {
	out := make([]Expense, len(es))
	for i, e := range es {
		out[i] = FromExpense(e)
	}
	return out
}

// ToExpense converts a wire expense to the domain type.
func ToExpense(e Expense) model.Expense {
	return model.Expense{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    decimal.NewFromFloat(e.Amount),
		Essential: e.Essential,
		Feedback:  e.Feedback,
	}
}

// ToExpenses converts a slice of wire expenses.
func ToExpenses(es []Expense) []model.Expense {
	if len(es) == 0 {
		return nil
	}
	out := make([]model.Expense, len(es))
	for i, e := range es {
		out[i] = ToExpense(e)
	}
	return out
}

// Info describes a simulation.
func Info(s *model.Simulation) SimulationInfo {
	return SimulationInfo{
		ID:                s.ID,
		Question:          s.Question,
		Category:          s.Category.Slug(),
		CategoryDisplay:   s.Category.Display(),
		Difficulty:        string(s.Difficulty),
		DifficultyDisplay: s.Difficulty.Display(),
	}
}

// Page builds the play-view payload for a simulation.
func Page(s *model.Simulation) SimulationPage {
	return SimulationPage{
		Simulation:    Info(s),
		MonthlyIncome: s.MonthlyIncome.InexactFloat64(),
		Expenses:      FromExpenses(s.Expenses),
	}
}

// ToSimulation rebuilds a domain simulation from a page payload.
func ToSimulation(p SimulationPage) *model.Simulation {
	cat, ok := model.ParseCategory(p.Simulation.Category)
	if !ok {
		cat = model.CategoryBudget
	}
	return &model.Simulation{
		ID:            p.Simulation.ID,
		Question:      p.Simulation.Question,
		Category:      cat,
		Difficulty:    model.Difficulty(p.Simulation.Difficulty),
		MonthlyIncome: decimal.NewFromFloat(p.MonthlyIncome),
		Expenses:      ToExpenses(p.Expenses),
	}
}

// Summary converts a listing row.
func Summary(s model.SimulationSummary) SimulationSummary {
	return SimulationSummary{
		SimulationInfo: SimulationInfo{
			ID:                s.ID,
			Question:          s.Question,
			Category:          s.Category.Slug(),
			CategoryDisplay:   s.Category.Display(),
			Difficulty:        string(s.Difficulty),
			DifficultyDisplay: s.Difficulty.Display(),
		},
		MonthlyIncome: s.MonthlyIncome.InexactFloat64(),
		ExpenseCount:  s.ExpenseCount,
	}
}

// EncodeResult converts a tagged result into the response body.
func EncodeResult(r model.Result, category model.Category) (SubmitResponse, error) {
	switch v := r.(type) {
	case model.SuccessResult:
		ids := v.SelectedIDs
		if ids == nil {
			ids = []int{}
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return SubmitResponse{}, err
		}
		fb := v.Feedback
		return SubmitResponse{
			IsSuccessful:     true,
			SimulationID:     v.SimID,
			RandomFeedback:   &fb,
			Feedback:         []string{v.Feedback},
			TotalSelected:    v.TotalSelected.InexactFloat64(),
			MonthlyIncome:    v.MonthlyIncome.InexactFloat64(),
			BudgetDifference: v.MonthlyIncome.Sub(v.TotalSelected).InexactFloat64(),
			XPEarned:         v.XPEarned,
			MissingEssential: []Expense{},
			SelectedExpenses: raw,
			Category:         category.Slug(),
		}, nil
	case model.FailureResult:
		raw, err := json.Marshal(FromExpenses(v.Selected))
		if err != nil {
			return SubmitResponse{}, err
		}
		resp := SubmitResponse{
			SimulationID:     v.SimID,
			Feedback:         v.FeedbackAll,
			TotalSelected:    v.TotalSelected.InexactFloat64(),
			MonthlyIncome:    v.MonthlyIncome.InexactFloat64(),
			BudgetDifference: v.BudgetDifference.InexactFloat64(),
			MissingEssential: FromExpenses(v.MissingEssential),
			OptionalExpenses: FromExpenses(v.Optional),
			SelectedExpenses: raw,
			Category:         category.Slug(),
		}
		if v.Feedback != "" {
			fb := v.Feedback
			resp.RandomFeedback = &fb
		}
		if resp.Feedback == nil {
			resp.Feedback = []string{}
		}
		return resp, nil
	}
	return SubmitResponse{}, fmt.Errorf("unsupported result %T", r)
}

// DecodeResult maps a response body onto the tagged result variants.
// selected_expenses may be either an id list or an object list in both
// variants.
func DecodeResult(body []byte) (model.Result, error) {
	var resp SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	ids, objs, err := parseSelected(resp.SelectedExpenses)
	if err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(resp.TotalSelected)
	income := decimal.NewFromFloat(resp.MonthlyIncome)

	if resp.IsSuccessful {
		if ids == nil {
			for _, o := range objs {
				ids = append(ids, o.ID)
			}
		}
		fb := ""
		if resp.RandomFeedback != nil {
			fb = *resp.RandomFeedback
		}
		return model.SuccessResult{
			SimID:         resp.SimulationID,
			SelectedIDs:   ids,
			TotalSelected: total,
			MonthlyIncome: income,
			XPEarned:      resp.XPEarned,
			Feedback:      fb,
		}, nil
	}

	selected := ToExpenses(objs)
	if objs == nil {
		for _, id := range ids {
			selected = append(selected, model.Expense{ID: id})
		}
	}
	fr := model.FailureResult{
		SimID:            resp.SimulationID,
		FeedbackAll:      resp.Feedback,
		BudgetDifference: decimal.NewFromFloat(resp.BudgetDifference),
		TotalSelected:    total,
		MonthlyIncome:    income,
		MissingEssential: ToExpenses(resp.MissingEssential),
		Selected:         selected,
		Optional:         ToExpenses(resp.OptionalExpenses),
	}
	if resp.RandomFeedback != nil {
		fr.Feedback = *resp.RandomFeedback
	}
	return fr, nil
}

// parseSelected handles the overloaded selected_expenses field.
// Exactly one of ids and objs is non-nil unless the field is absent.
func parseSelected(raw json.RawMessage) ([]int, []Expense, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil, nil
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err == nil {
		if ids == nil {
			ids = []int{}
		}
		return ids, nil, nil
	}

	var objs []Expense
	if err := json.Unmarshal(raw, &objs); err == nil {
		if objs == nil {
			objs = []Expense{}
		}
		return nil, objs, nil
	}

	return nil, nil, fmt.Errorf("%w: selected_expenses is neither ids nor expenses", ErrMalformed)
}
