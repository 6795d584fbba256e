package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/store"
	"github.com/theirongolddev/budgetsim/internal/wire"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (*Service, *model.Simulation) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "srv.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	d := decimal.RequireFromString
	sim := &model.Simulation{
		Question:      "Monthly basics",
		Category:      model.CategoryBudget,
		Difficulty:    model.Intermediate,
		MonthlyIncome: d("2000"),
		Expenses: []model.Expense{
			{Name: "Rent", Amount: d("1200"), Essential: true, Feedback: "Housing is essential."},
			{Name: "Groceries", Amount: d("300"), Essential: true, Feedback: "Food matters."},
			{Name: "Vacation", Amount: d("900"), Feedback: "Maybe next year."},
		},
	}
	if err := st.SaveSimulation(sim, ""); err != nil {
		t.Fatalf("SaveSimulation: %v", err)
	}

	s := New(Config{Rewards: config.NewRewards(config.RewardOverrides{}), Seed: 7, EventsBuffer: 10}, st)
	s.refresh()
	return s, sim
}

func submit(t *testing.T, h http.Handler, simID int, ids string, ajax bool) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"simulation_id": {itoa(simID)}, "selected_expenses": {ids}}
	req := httptest.NewRequest(http.MethodPost, "/v1/simulations/"+itoa(simID)+"/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(PlayerHeader, "p1")
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestSubmit_SuccessAwardsXPOnce(t *testing.T) {
	s, sim := newTestService(t)
	h := s.Handler()
	ids := "[" + itoa(sim.Expenses[0].ID) + "," + itoa(sim.Expenses[1].ID) + "]"

	rec := submit(t, h, sim.ID, ids, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	r, err := wire.DecodeResult(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	sr, ok := r.(model.SuccessResult)
	if !ok {
		t.Fatalf("result = %T, want success", r)
	}
	if sr.XPEarned != 100 || sr.Feedback != "Great job! You've earned 100 Budgeting XP." {
		t.Fatalf("first success = %+v", sr)
	}

	rec = submit(t, h, sim.ID, ids, true)
	sr = mustDecode(t, rec).(model.SuccessResult)
	if sr.XPEarned != 0 || sr.Feedback != "Great job creating a balanced budget!" {
		t.Fatalf("repeat success = %+v", sr)
	}

	st := s.snapshotStatus()
	if st.Submissions != 2 || st.Successes != 2 || st.EventsBuffered != 2 {
		t.Fatalf("status = %+v", st)
	}
}

func TestSubmit_FailureExplainsMissing(t *testing.T) {
	s, sim := newTestService(t)
	ids := "[" + itoa(sim.Expenses[0].ID) + "," + itoa(sim.Expenses[2].ID) + "]"

	rec := submit(t, s.Handler(), sim.ID, ids, true)
	fr, ok := mustDecode(t, rec).(model.FailureResult)
	if !ok {
		t.Fatal("want failure")
	}
	if len(fr.MissingEssential) != 1 || fr.MissingEssential[0].Name != "Groceries" {
		t.Fatalf("MissingEssential = %+v", fr.MissingEssential)
	}
	if !fr.BudgetDifference.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("BudgetDifference = %s", fr.BudgetDifference)
	}
	if len(fr.Selected) != 2 || fr.Selected[1].Name != "Vacation" {
		t.Fatalf("Selected = %+v", fr.Selected)
	}
	if fr.Feedback == "" || len(fr.FeedbackAll) != 2 {
		t.Fatalf("feedback = %q / %v", fr.Feedback, fr.FeedbackAll)
	}
}

func TestSubmit_NonAjaxSuccessRedirects(t *testing.T) {
	s, sim := newTestService(t)
	ids := "[" + itoa(sim.Expenses[1].ID) + "," + itoa(sim.Expenses[0].ID) + "]"
	rec := submit(t, s.Handler(), sim.ID, ids, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	q, err := wire.ParseResultURL(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("ParseResultURL: %v", err)
	}
	if q.SimulationID != sim.ID || q.Selected[0] != sim.Expenses[1].ID {
		t.Fatalf("query = %+v", q)
	}
	if !q.TotalSelected.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("TotalSelected = %s", q.TotalSelected)
	}
}

func TestSubmit_BadInput(t *testing.T) {
	s, sim := newTestService(t)
	h := s.Handler()
	if rec := submit(t, h, sim.ID, "not-json", true); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", rec.Code)
	}
	if rec := submit(t, h, sim.ID, "[99999]", true); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown id status = %d", rec.Code)
	}
	if rec := submit(t, h, 4242, "[]", true); rec.Code != http.StatusNotFound {
		t.Fatalf("missing sim status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/simulations/"+itoa(sim.ID)+"/submit", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET submit status = %d, want 405", rec.Code)
	}
}

func TestNextSimulation_PrefersUncompleted(t *testing.T) {
	s, sim := newTestService(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/simulations/next?category=budget", nil)
	req.Header.Set(PlayerHeader, "p1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page wire.SimulationPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Simulation.ID != sim.ID || len(page.Expenses) != 3 || page.MonthlyIncome != 2000 {
		t.Fatalf("page = %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/simulations/next?category=taxes", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty category status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/simulations/next?category=bogus", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus category status = %d, want 400", rec.Code)
	}
}

func TestResultPage(t *testing.T) {
	s, sim := newTestService(t)
	q := wire.ResultQuery{
		SimulationID:  sim.ID,
		Selected:      []int{sim.Expenses[0].ID, sim.Expenses[1].ID},
		TotalSelected: decimal.NewFromInt(1500),
		MonthlyIncome: decimal.NewFromInt(2000),
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, q.URL("/result"), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{"<svg", "Rent", "Remaining", "$500.00", "rgba(54, 162, 235, 0.5)", "Essential"} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, q.URL("/v1/result"), nil))
	var page wire.ResultPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Chart) != 3 || page.Chart[2].Label != "Remaining" || page.Chart[2].Amount != 500 {
		t.Fatalf("chart = %+v", page.Chart)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result?simulation_id=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad query status = %d", rec.Code)
	}
}

func TestBuildResult_NoRemainingWhenOverBudget(t *testing.T) {
	_, sim := newTestService(t)
	page, series := BuildResult(sim, wire.ResultQuery{
		SimulationID:  sim.ID,
		Selected:      []int{sim.Expenses[0].ID, sim.Expenses[2].ID, 12345},
		TotalSelected: decimal.NewFromInt(2100),
		MonthlyIncome: decimal.NewFromInt(2000),
	})
	if series.HasRemaining || len(page.Chart) != 2 {
		t.Fatalf("chart = %+v", page.Chart)
	}
	if len(page.Selected) != 2 {
		t.Fatalf("unknown ids should be skipped: %+v", page.Selected)
	}
}

func TestProgressEndpoint(t *testing.T) {
	s, sim := newTestService(t)
	h := s.Handler()
	ids := "[" + itoa(sim.Expenses[0].ID) + "," + itoa(sim.Expenses[1].ID) + "]"
	submit(t, h, sim.ID, "[]", true)
	submit(t, h, sim.ID, ids, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/players/p1/progress", nil))
	var p wire.Progress
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Attempts != 2 || p.Successes != 1 || p.TotalXP != 100 || p.XPByCategory["budget"] != 100 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil)

	for i := range 3 {
		s.recordSubmission(wire.Event{SimulationID: i + 1, At: time.Now()})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].Seq != 2 || s.events[1].Seq != 3 {
		t.Fatalf("events ring contains seqs [%d, %d], want [2, 3]", s.events[0].Seq, s.events[1].Seq)
	}
	if s.submissions != 3 {
		t.Fatalf("submissions = %d, want 3", s.submissions)
	}
}

func mustDecode(t *testing.T, rec *httptest.ResponseRecorder) model.Result {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	r, err := wire.DecodeResult(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	return r
}
