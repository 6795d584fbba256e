package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

func TestDecodeResult_SuccessWithIDs(t *testing.T) {
	body := `{"is_successful": true, "simulation_id": 3, "selected_expenses": [4, 1],
		"total_selected": 1500, "monthly_income": 2000, "xp_earned": 50,
		"random_feedback": "Great job!"}`

	r, err := DecodeResult([]byte(body))
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	sr, ok := r.(model.SuccessResult)
	if !ok {
		t.Fatalf("type = %T, want SuccessResult", r)
	}
	if len(sr.SelectedIDs) != 2 || sr.SelectedIDs[0] != 4 {
		t.Fatalf("SelectedIDs = %v", sr.SelectedIDs)
	}
	if !sr.TotalSelected.Equal(decimal.NewFromInt(1500)) || sr.XPEarned != 50 {
		t.Fatalf("got %+v", sr)
	}
}

func TestDecodeResult_SuccessWithObjects(t *testing.T) {
	body := `{"is_successful": true, "simulation_id": 3,
		"selected_expenses": [{"id": 9, "name": "Rent", "amount": 900, "essential": true}],
		"total_selected": 900, "monthly_income": 1000}`
	r, err := DecodeResult([]byte(body))
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	if ids := r.(model.SuccessResult).SelectedIDs; len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("SelectedIDs = %v", ids)
	}
}

func TestDecodeResult_Failure(t *testing.T) {
	body := `{"is_successful": false, "simulation_id": 3,
		"random_feedback": "Rent: You need housing.",
		"feedback": ["Rent: You need housing."],
		"budget_difference": -100.5, "total_selected": 2100.5, "monthly_income": 2000,
		"missing_essential": [{"id": 1, "name": "Rent", "amount": 1200, "feedback": "You need housing."}],
		"selected_expenses": [{"id": 2, "name": "Car", "amount": 2100.5, "essential": false}]}`
	r, err := DecodeResult([]byte(body))
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	fr, ok := r.(model.FailureResult)
	if !ok {
		t.Fatalf("type = %T, want FailureResult", r)
	}
	if fr.Feedback != "Rent: You need housing." {
		t.Fatalf("Feedback = %q", fr.Feedback)
	}
	if len(fr.MissingEssential) != 1 || fr.MissingEssential[0].Name != "Rent" {
		t.Fatalf("MissingEssential = %+v", fr.MissingEssential)
	}
	if len(fr.Selected) != 1 || fr.Selected[0].Essential {
		t.Fatalf("Selected = %+v", fr.Selected)
	}
	if !fr.BudgetDifference.Equal(decimal.RequireFromString("-100.5")) {
		t.Fatalf("BudgetDifference = %s", fr.BudgetDifference)
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	if _, err := DecodeResult([]byte(`{"is_successful": "yes"}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if _, err := DecodeResult([]byte(`{"selected_expenses": "1,2"}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if _, err := DecodeResult([]byte(`not json`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestEncodeResult_ShapesDiffer(t *testing.T) {
	d := decimal.RequireFromString
	succ, err := EncodeResult(model.SuccessResult{SimID: 1, SelectedIDs: []int{3, 2}, TotalSelected: d("10"), MonthlyIncome: d("20")}, model.CategoryBudget)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}
	if string(succ.SelectedExpenses) != "[3,2]" {
		t.Fatalf("success selected = %s", succ.SelectedExpenses)
	}
	if succ.BudgetDifference != 10 || succ.Category != "budget" {
		t.Fatalf("got %+v", succ)
	}

	fail, err := EncodeResult(model.FailureResult{SimID: 1, Selected: []model.Expense{{ID: 3, Name: "Rent", Amount: d("5")}}}, model.CategoryBudget)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}
	var objs []Expense
	if err := json.Unmarshal(fail.SelectedExpenses, &objs); err != nil || objs[0].Name != "Rent" {
		t.Fatalf("failure selected = %s (%v)", fail.SelectedExpenses, err)
	}
	if fail.RandomFeedback != nil {
		t.Fatal("empty feedback should encode as null")
	}

	// round trip through the decoder keeps the variant
	b, _ := json.Marshal(fail)
	r, err := DecodeResult(b)
	if err != nil || r.Successful() {
		t.Fatalf("round trip = %T, %v", r, err)
	}
}
