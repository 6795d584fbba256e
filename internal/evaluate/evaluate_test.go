package evaluate

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sim() *model.Simulation {
	return &model.Simulation{
		ID:            7,
		Question:      "First apartment",
		Category:      model.CategoryBudget,
		Difficulty:    model.Beginner,
		MonthlyIncome: d("2000"),
		Expenses: []model.Expense{
			{ID: 1, Name: "Rent", Amount: d("1200"), Essential: true, Feedback: "Housing comes first."},
			{ID: 2, Name: "Groceries", Amount: d("300"), Essential: true, Feedback: "You need to eat."},
			{ID: 3, Name: "Concert", Amount: d("600"), Feedback: "Nice, but optional."},
		},
	}
}

func TestEvaluate_Success(t *testing.T) {
	o, err := Evaluate(sim(), []int{2, 1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !o.Successful {
		t.Fatalf("Successful = false, feedback %v", o.Feedback)
	}
	if !o.TotalSelected.Equal(d("1500")) {
		t.Fatalf("TotalSelected = %s, want 1500", o.TotalSelected)
	}
	if got := o.SelectedIDs(); got[0] != 2 || got[1] != 1 {
		t.Fatalf("SelectedIDs = %v, want order preserved", got)
	}

	r := Result(sim(), o, 50, NewPicker(1))
	sr, ok := r.(model.SuccessResult)
	if !ok {
		t.Fatalf("Result type = %T, want SuccessResult", r)
	}
	if sr.Feedback != "Great job! You've earned 50 Budgeting XP." {
		t.Fatalf("Feedback = %q", sr.Feedback)
	}
}

func TestEvaluate_MissingEssential(t *testing.T) {
	o, err := Evaluate(sim(), []int{1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if o.Successful {
		t.Fatal("Successful = true with missing groceries")
	}
	if len(o.Missing) != 1 || o.Missing[0].ID != 2 {
		t.Fatalf("Missing = %+v, want groceries", o.Missing)
	}
	if o.Feedback[0] != "Groceries: You need to eat." {
		t.Fatalf("Feedback[0] = %q", o.Feedback[0])
	}
	if len(o.Optional) != 0 {
		t.Fatal("Optional should only be listed when over budget")
	}
}

func TestEvaluate_OverBudget(t *testing.T) {
	o, _ := Evaluate(sim(), []int{1, 2, 3})
	if o.WithinBudget || o.Successful {
		t.Fatal("2100 > 2000 should fail")
	}
	last := o.Feedback[len(o.Feedback)-1]
	if last != "Your selected expenses ($2100.00) exceed your monthly income ($2000.00)." {
		t.Fatalf("over-budget line = %q", last)
	}
	if len(o.Optional) != 1 || o.Optional[0].Name != "Concert" {
		t.Fatalf("Optional = %+v", o.Optional)
	}

	r := Result(sim(), o, 0, NewPicker(3)).(model.FailureResult)
	if !r.BudgetDifference.Equal(d("-100")) || !r.OverBudget() {
		t.Fatalf("BudgetDifference = %s, want -100", r.BudgetDifference)
	}
	if r.Feedback != last {
		t.Fatalf("random feedback %q should be the only line", r.Feedback)
	}
}

func TestEvaluate_ExactIncomeIsWithinBudget(t *testing.T) {
	s := sim()
	s.MonthlyIncome = d("1500")
	o, _ := Evaluate(s, []int{1, 2})
	if !o.Successful {
		t.Fatal("total equal to income should pass")
	}
}

func TestEvaluate_RejectsBadIDs(t *testing.T) {
	if _, err := Evaluate(sim(), []int{1, 99}); !errors.Is(err, ErrUnknownExpense) {
		t.Fatalf("err = %v, want ErrUnknownExpense", err)
	}
	if _, err := Evaluate(sim(), []int{1, 1}); !errors.Is(err, ErrDuplicateExpense) {
		t.Fatalf("err = %v, want ErrDuplicateExpense", err)
	}
}

func TestSuccessMessage_Repeat(t *testing.T) {
	if got := SuccessMessage(0, model.CategoryTaxes); got != "Great job creating a balanced budget!" {
		t.Fatalf("SuccessMessage = %q", got)
	}
}

func TestPicker_DeterministicWithSeed(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	p1, p2 := NewPicker(42), NewPicker(42)
	for range 10 {
		if p1.Pick(lines) != p2.Pick(lines) {
			t.Fatal("same seed should pick the same lines")
		}
	}
	if NewPicker(0).Pick(nil) != "" {
		t.Fatal("empty lines should pick empty string")
	}
	got := NewPicker(5).Pick(lines)
	if !strings.Contains("abcd", got) {
		t.Fatalf("Pick = %q", got)
	}
}
