package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetsim/internal/budget"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/submission"
	"github.com/theirongolddev/budgetsim/internal/tui/components"
	"github.com/theirongolddev/budgetsim/internal/wire"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	sim     *model.Simulation
	payload string
	page    *wire.ResultPage
}

func (f *fakeBackend) NextSimulation(context.Context, string, string) (*model.Simulation, error) {
	return f.sim, nil
}

func (f *fakeBackend) FetchSimulation(context.Context, int) (*model.Simulation, error) {
	return f.sim, nil
}

func (f *fakeBackend) Submit(_ context.Context, _ int, payload string) (model.Result, error) {
	f.payload = payload
	return nil, errors.New("not used")
}

func (f *fakeBackend) FetchResult(context.Context, wire.ResultQuery) (*wire.ResultPage, error) {
	return f.page, nil
}

func testSim() *model.Simulation {
	return &model.Simulation{
		ID:            9,
		Question:      "Plan your first month after moving out",
		Category:      model.CategoryBudget,
		Difficulty:    model.Beginner,
		MonthlyIncome: decimal.NewFromInt(2000),
		Expenses: []model.Expense{
			{ID: 1, Name: "Rent", Amount: decimal.NewFromInt(1200), Essential: true},
			{ID: 2, Name: "Groceries", Amount: decimal.NewFromInt(400), Essential: true},
			{ID: 3, Name: "Concert", Amount: decimal.NewFromInt(500)},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app, cmd
}

func loadedApp(t *testing.T, fb *fakeBackend) App {
	t.Helper()
	a := NewApp(fb, Options{BaseURL: "http://localhost:8787"})
	a, _ = step(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a, _ = step(t, a, SimulationLoadedMsg{Sim: fb.sim})
	if a.mode != modePlay {
		t.Fatalf("mode = %v, want play", a.mode)
	}
	return a
}

func TestToggleRecomputesTotals(t *testing.T) {
	a := loadedApp(t, &fakeBackend{sim: testSim()})

	a, _ = step(t, a, keyMsg("enter")) // Rent
	if !a.snap.TotalExpenses.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("total = %s", a.snap.TotalExpenses)
	}
	if a.snap.Payload() != "[1]" {
		t.Fatalf("payload = %s", a.snap.Payload())
	}
	if a.series.Len() != 2 {
		t.Fatalf("chart should have Rent and Remaining: %v", a.series.Labels)
	}

	// Cursor stays at the top of Available, which is now Groceries.
	a, _ = step(t, a, keyMsg("enter"))
	a, _ = step(t, a, keyMsg("enter"))
	if a.snap.RemainingStyle() != budget.StyleNegative {
		t.Fatalf("remaining = %s, want negative", a.snap.RemainingBudget)
	}

	// Remove Rent from the selected pane.
	a, _ = step(t, a, keyMsg("tab"))
	a, _ = step(t, a, keyMsg("enter"))
	if a.snap.Payload() != "[2,3]" {
		t.Fatalf("payload = %s", a.snap.Payload())
	}
}

func TestReorderSelected(t *testing.T) {
	a := loadedApp(t, &fakeBackend{sim: testSim()})
	a, _ = step(t, a, keyMsg("enter"))
	a, _ = step(t, a, keyMsg("enter"))
	a, _ = step(t, a, keyMsg("tab"))
	a, _ = step(t, a, keyMsg("J"))
	if a.snap.Payload() != "[2,1]" {
		t.Fatalf("payload = %s", a.snap.Payload())
	}
	if a.cursor[budget.Selected] != 1 {
		t.Fatalf("cursor should follow the moved item: %d", a.cursor[budget.Selected])
	}
}

func TestSubmitFailureShowsFeedbackAndSolution(t *testing.T) {
	a := loadedApp(t, &fakeBackend{sim: testSim()})
	a, _ = step(t, a, keyMsg("enter")) // Rent

	a, cmd := step(t, a, keyMsg("s"))
	if cmd == nil || !a.submitting {
		t.Fatal("submit should start a request")
	}
	a, _ = step(t, a, keyMsg("s"))
	if a.notice != "Submission in progress..." {
		t.Fatalf("double submit notice = %q", a.notice)
	}

	groceries := model.Expense{ID: 2, Name: "Groceries", Amount: decimal.NewFromInt(400), Essential: true}
	a, _ = step(t, a, SubmitResultMsg{Result: model.FailureResult{
		SimID:            9,
		Feedback:         "Groceries: You need to eat.",
		BudgetDifference: decimal.NewFromInt(800),
		TotalSelected:    decimal.NewFromInt(1200),
		MonthlyIncome:    decimal.NewFromInt(2000),
		MissingEssential: []model.Expense{groceries},
		Selected:         []model.Expense{testSim().Expenses[0]},
	}})
	if a.feedback == nil || a.feedback.Header != submission.AdjustmentHeader {
		t.Fatalf("feedback = %+v", a.feedback)
	}

	a, _ = step(t, a, keyMsg("v"))
	if a.solution == nil || len(a.solution.Missing) != 1 || !a.solution.Missing[0].Highlight {
		t.Fatalf("solution = %+v", a.solution)
	}
	if !strings.Contains(a.View(), "still available") {
		t.Fatal("view should flag the missing item that is still available")
	}

	a, _ = step(t, a, keyMsg("r"))
	if a.feedback != nil || a.handler.State() != submission.Idle {
		t.Fatal("r should dismiss feedback and allow a new submission")
	}
}

func TestSubmitSuccessLoadsResult(t *testing.T) {
	fb := &fakeBackend{sim: testSim(), page: &wire.ResultPage{
		Selected:         []wire.Expense{{ID: 1, Name: "Rent", Amount: 1200, Essential: true}},
		TotalSelected:    1200,
		MonthlyIncome:    2000,
		BudgetDifference: 800,
		Chart:            []wire.ChartSlice{{Label: "Rent", Amount: 1200}, {Label: "Remaining", Amount: 800}},
	}}
	a := loadedApp(t, fb)
	a, _ = step(t, a, keyMsg("enter"))
	a, _ = step(t, a, keyMsg("s"))

	a, cmd := step(t, a, SubmitResultMsg{Result: model.SuccessResult{
		SimID:         9,
		SelectedIDs:   []int{1},
		TotalSelected: decimal.NewFromInt(1200),
		MonthlyIncome: decimal.NewFromInt(2000),
		XPEarned:      50,
	}})
	if !strings.HasPrefix(a.resultURL, "http://localhost:8787/result?") {
		t.Fatalf("resultURL = %q", a.resultURL)
	}
	if a.notice != "+50 XP" {
		t.Fatalf("notice = %q", a.notice)
	}
	if cmd == nil {
		t.Fatal("success should fetch the result page")
	}

	a, _ = step(t, a, cmd())
	if a.mode != modeResult || !a.resultSeries.HasRemaining {
		t.Fatalf("mode = %v, series = %+v", a.mode, a.resultSeries)
	}
	view := a.View()
	if !strings.Contains(view, "Budget accepted") || !strings.Contains(view, "Rent") {
		t.Fatal("result view should show the accepted budget")
	}
}

func TestSubmitTransportErrorAlerts(t *testing.T) {
	a := loadedApp(t, &fakeBackend{sim: testSim()})
	a.handler.Logf = func(string, ...any) {}
	a, _ = step(t, a, keyMsg("s"))
	a, _ = step(t, a, SubmitResultMsg{Err: errors.New("connection refused")})
	if a.alert != submission.AlertText {
		t.Fatalf("alert = %q", a.alert)
	}
	if a.handler.State() != submission.Idle {
		t.Fatalf("state = %v, want idle", a.handler.State())
	}
}

func TestClickPaneBarSwitchesFocus(t *testing.T) {
	a := loadedApp(t, &fakeBackend{sim: testSim()})
	counts := a.paneCounts()
	x := components.PaneVisualWidth(0, counts[0]) + 1 + 1

	a, _ = step(t, a, tea.MouseMsg{X: x, Y: paneBarRow, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.focus != budget.Selected {
		t.Fatalf("focus = %v, want selected", a.focus)
	}
	a, _ = step(t, a, tea.MouseMsg{X: 1, Y: paneBarRow, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.focus != budget.Available {
		t.Fatalf("focus = %v, want available", a.focus)
	}
}

func TestLoadErrorThenRetry(t *testing.T) {
	a := NewApp(&fakeBackend{sim: testSim()}, Options{})
	a, _ = step(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a, _ = step(t, a, SimulationLoadedMsg{Err: errors.New("no simulations")})
	if !strings.Contains(a.View(), "Could not load") {
		t.Fatal("load error should be shown")
	}
	a, cmd := step(t, a, keyMsg("r"))
	if cmd == nil || a.loadErr != nil {
		t.Fatal("r should retry the load")
	}
}
