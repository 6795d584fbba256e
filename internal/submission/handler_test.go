package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetsim/internal/model"
)

type fakeSubmitter struct {
	res   model.Result
	err   error
	calls int
}

func (f *fakeSubmitter) Submit(_ context.Context, _ int, _ string) (model.Result, error) {
	f.calls++
	return f.res, f.err
}

func failure() model.FailureResult {
	return model.FailureResult{
		SimID:            3,
		Feedback:         "Groceries: You need to eat.",
		FeedbackAll:      []string{"Groceries: You need to eat.", "Your expenses exceed your income by $100.00."},
		BudgetDifference: decimal.NewFromInt(-100),
		TotalSelected:    decimal.NewFromInt(2100),
		MonthlyIncome:    decimal.NewFromInt(2000),
		MissingEssential: []model.Expense{
			{ID: 2, Name: "Groceries", Amount: decimal.NewFromInt(400), Essential: true},
			{ID: 4, Name: "Utilities", Amount: decimal.NewFromInt(150), Essential: true},
		},
		Selected: []model.Expense{
			{ID: 1, Name: "Rent", Amount: decimal.NewFromInt(1200), Essential: true},
			{ID: 5, Name: "Vacation", Amount: decimal.NewFromInt(900)},
		},
	}
}

func TestBegin_GuardsDoubleSubmit(t *testing.T) {
	h := NewHandler("http://localhost:8787")
	if err := h.Begin(); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if err := h.Begin(); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Begin = %v, want ErrInFlight", err)
	}
}

func TestBegin_ConcurrentOnlyOneWins(t *testing.T) {
	h := NewHandler("")
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.Begin() == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestComplete_SuccessRedirectsOnce(t *testing.T) {
	h := NewHandler("http://localhost:8787/")
	_ = h.Begin()
	out, err := h.Complete(model.SuccessResult{
		SimID:         7,
		SelectedIDs:   []int{3, 1},
		TotalSelected: decimal.RequireFromString("1600.50"),
		MonthlyIncome: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Feedback != nil || out.Alert != "" {
		t.Fatalf("success should only redirect: %+v", out)
	}
	if !strings.HasPrefix(out.RedirectURL, "http://localhost:8787/result?") {
		t.Fatalf("RedirectURL = %q", out.RedirectURL)
	}

	q, err := ParseResultURL(out.RedirectURL)
	if err != nil {
		t.Fatalf("ParseResultURL: %v", err)
	}
	if q.SimulationID != 7 || len(q.Selected) != 2 || q.Selected[0] != 3 || q.Selected[1] != 1 {
		t.Fatalf("query = %+v", q)
	}
	if !q.TotalSelected.Equal(decimal.RequireFromString("1600.5")) || !q.MonthlyIncome.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("query totals = %+v", q)
	}

	if h.State() != Redirecting {
		t.Fatalf("state = %v, want redirecting", h.State())
	}
	if err := h.Begin(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Begin after redirect = %v, want ErrClosed", err)
	}
}

func TestComplete_FailureShowsFeedback(t *testing.T) {
	h := NewHandler("")
	_ = h.Begin()
	out, err := h.Complete(failure())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.RedirectURL != "" || out.Feedback == nil {
		t.Fatalf("failure must not redirect: %+v", out)
	}
	fb := out.Feedback
	if fb.Header != AdjustmentHeader || fb.Message != "Groceries: You need to eat." || !fb.SolutionAvailable {
		t.Fatalf("feedback = %+v", fb)
	}
	if fb.Summary.WithinBudget() {
		t.Fatal("negative difference should be styled as failure")
	}
	if got := fb.Summary.DifferenceDisplay(); got != "$-100.00" {
		t.Fatalf("DifferenceDisplay = %q", got)
	}
	if h.State() != FeedbackShown {
		t.Fatalf("state = %v", h.State())
	}
}

func TestComplete_WithoutBegin(t *testing.T) {
	h := NewHandler("")
	if _, err := h.Complete(failure()); !errors.Is(err, ErrNotSubmitting) {
		t.Fatalf("err = %v, want ErrNotSubmitting", err)
	}
}

func TestShowSolution_Once(t *testing.T) {
	h := NewHandler("")
	_ = h.Begin()
	_, _ = h.Complete(failure())

	sol, err := h.ShowSolution([]int{4, 6})
	if err != nil {
		t.Fatalf("ShowSolution: %v", err)
	}
	if len(sol.Missing) != 2 {
		t.Fatalf("missing = %+v", sol.Missing)
	}
	if sol.Missing[0].Highlight {
		t.Error("Groceries is not in the available region")
	}
	if !sol.Missing[1].Highlight {
		t.Error("Utilities is still available and should be highlighted")
	}
	if len(sol.Selected) != 2 || sol.Selected[0].Badge() != "Essential" || sol.Selected[1].Badge() != "Optional" {
		t.Fatalf("selected = %+v", sol.Selected)
	}

	if h.SolutionAvailable() {
		t.Error("solution should no longer be available")
	}
	if _, err := h.ShowSolution(nil); !errors.Is(err, ErrSolutionShown) {
		t.Fatalf("second ShowSolution = %v, want ErrSolutionShown", err)
	}
}

func TestShowSolution_WithoutFeedback(t *testing.T) {
	h := NewHandler("")
	if _, err := h.ShowSolution(nil); !errors.Is(err, ErrNoFeedback) {
		t.Fatalf("err = %v, want ErrNoFeedback", err)
	}
}

func TestReset_AllowsResubmitWithFreshSolution(t *testing.T) {
	h := NewHandler("")
	_ = h.Begin()
	_, _ = h.Complete(failure())
	_, _ = h.ShowSolution(nil)

	h.Reset()
	if err := h.Begin(); err != nil {
		t.Fatalf("Begin after Reset: %v", err)
	}
	_, _ = h.Complete(failure())
	if _, err := h.ShowSolution(nil); err != nil {
		t.Fatalf("new failure should allow a new reveal: %v", err)
	}
}

func TestSubmit_TransportErrorAlertsAndReturnsToIdle(t *testing.T) {
	h := NewHandler("")
	var logged string
	h.Logf = func(format string, args ...any) { logged = format }

	boom := errors.New("connection refused")
	out, err := h.Submit(context.Background(), &fakeSubmitter{err: boom}, 1, "[]")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if out.Alert != AlertText {
		t.Fatalf("alert = %q", out.Alert)
	}
	if logged == "" {
		t.Error("cause should be logged")
	}
	if h.State() != Idle {
		t.Fatalf("state = %v, want idle", h.State())
	}
	if err := h.Begin(); err != nil {
		t.Fatalf("resubmit after failure: %v", err)
	}
}

func TestSubmit_Success(t *testing.T) {
	h := NewHandler("http://h")
	fs := &fakeSubmitter{res: model.SuccessResult{SimID: 2, SelectedIDs: []int{1}}}
	out, err := h.Submit(context.Background(), fs, 2, "[1]")
	if err != nil || out.RedirectURL == "" {
		t.Fatalf("out = %+v, err = %v", out, err)
	}
	if _, err := h.Submit(context.Background(), fs, 2, "[1]"); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Submit = %v, want ErrClosed", err)
	}
	if fs.calls != 1 {
		t.Fatalf("calls = %d, want 1", fs.calls)
	}
}

func TestSummaryDifferenceDisplay(t *testing.T) {
	s := Summary{Difference: decimal.RequireFromString("250")}
	if got := s.DifferenceDisplay(); got != "$250.00" || !s.WithinBudget() {
		t.Fatalf("DifferenceDisplay = %q, within = %v", got, s.WithinBudget())
	}
	s = Summary{Difference: decimal.RequireFromString("-500")}
	if got := s.DifferenceDisplay(); got != "$-500.00" || s.WithinBudget() {
		t.Fatalf("DifferenceDisplay = %q, within = %v", got, s.WithinBudget())
	}
}
