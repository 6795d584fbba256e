package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSim() *model.Simulation {
	return &model.Simulation{
		Question:      "Starter budget",
		Category:      model.CategoryBudget,
		Difficulty:    model.Intermediate,
		MonthlyIncome: decimal.RequireFromString("2500.50"),
		Expenses: []model.Expense{
			{Name: "Rent", Amount: decimal.RequireFromString("1200"), Essential: true, Feedback: "Shelter."},
			{Name: "Coffee", Amount: decimal.RequireFromString("45.25"), Feedback: "Treat."},
		},
	}
}

func TestSaveAndGetSimulation(t *testing.T) {
	s := openTest(t)
	sim := sampleSim()
	if err := s.SaveSimulation(sim, "catalog.yaml"); err != nil {
		t.Fatalf("SaveSimulation: %v", err)
	}
	if sim.ID == 0 || sim.Expenses[0].ID == 0 || sim.Expenses[1].ID == 0 {
		t.Fatalf("ids not assigned: %+v", sim)
	}

	got, err := s.GetSimulation(sim.ID)
	if err != nil {
		t.Fatalf("GetSimulation: %v", err)
	}
	if got.Question != "Starter budget" || got.Difficulty != model.Intermediate {
		t.Fatalf("got %+v", got)
	}
	if !got.MonthlyIncome.Equal(decimal.RequireFromString("2500.5")) {
		t.Fatalf("MonthlyIncome = %s", got.MonthlyIncome)
	}
	if len(got.Expenses) != 2 || got.Expenses[1].Name != "Coffee" || !got.Expenses[0].Essential {
		t.Fatalf("Expenses = %+v", got.Expenses)
	}

	exists, err := s.QuestionExists("Starter budget")
	if err != nil || !exists {
		t.Fatalf("QuestionExists = %v, %v", exists, err)
	}
	if err := s.SaveSimulation(sampleSim(), ""); err == nil {
		t.Fatal("duplicate question should fail")
	}
}

func TestGetSimulation_NotFound(t *testing.T) {
	s := openTest(t)
	if _, err := s.GetSimulation(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSimulations_Filter(t *testing.T) {
	s := openTest(t)
	a := sampleSim()
	b := sampleSim()
	b.Question = "Tax time"
	b.Category = model.CategoryTaxes
	_ = s.SaveSimulation(a, "")
	_ = s.SaveSimulation(b, "")

	all, err := s.ListSimulations(Filter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListSimulations = %d, %v", len(all), err)
	}
	if all[0].ExpenseCount != 2 {
		t.Fatalf("ExpenseCount = %d, want 2", all[0].ExpenseCount)
	}
	taxes, _ := s.ListSimulations(Filter{Category: model.CategoryTaxes})
	if len(taxes) != 1 || taxes[0].Question != "Tax time" {
		t.Fatalf("taxes = %+v", taxes)
	}
	none, _ := s.ListSimulations(Filter{Category: model.CategoryTaxes, Difficulty: model.Advanced})
	if len(none) != 0 {
		t.Fatalf("want none, got %d", len(none))
	}
	if n, _ := s.SimulationCount(); n != 2 {
		t.Fatalf("SimulationCount = %d", n)
	}
}

func TestListSimulations_CorruptIncome(t *testing.T) {
	s := openTest(t)
	sim := sampleSim()
	if err := s.SaveSimulation(sim, ""); err != nil {
		t.Fatalf("SaveSimulation: %v", err)
	}
	if _, err := s.db.Exec("UPDATE simulations SET monthly_income = 'lots' WHERE id = ?", sim.ID); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.ListSimulations(Filter{}); err == nil {
		t.Fatal("ListSimulations should report a malformed income")
	}
	if _, err := s.GetSimulation(sim.ID); err == nil {
		t.Fatal("GetSimulation should report a malformed income")
	}
}

func TestRecordCompletion_OnlyOnce(t *testing.T) {
	s := openTest(t)
	sim := sampleSim()
	_ = s.SaveSimulation(sim, "")

	c := model.Completion{
		PlayerID: "p1", SimulationID: sim.ID, Category: sim.Category,
		Difficulty: sim.Difficulty, XP: 100, CompletedAt: time.Now(),
	}
	created, err := s.RecordCompletion(c)
	if err != nil || !created {
		t.Fatalf("first RecordCompletion = %v, %v", created, err)
	}
	created, err = s.RecordCompletion(c)
	if err != nil || created {
		t.Fatalf("second RecordCompletion = %v, %v", created, err)
	}

	done, _ := s.CompletedIDs("p1", model.CategoryBudget)
	if !done[sim.ID] {
		t.Fatalf("CompletedIDs = %v", done)
	}
	if ok, _ := s.IsCompleted("p2", sim.ID); ok {
		t.Fatal("other player should not be completed")
	}
	comps, _ := s.LoadCompletions("p1")
	if len(comps) != 1 || comps[0].XP != 100 {
		t.Fatalf("LoadCompletions = %+v", comps)
	}
}

func TestAttempts(t *testing.T) {
	s := openTest(t)
	now := time.Now()
	for i, ok := range []bool{false, true} {
		err := s.RecordAttempt(model.Attempt{
			ID: []string{"a1", "a2"}[i], PlayerID: "p1", SimulationID: 1,
			Category: model.CategoryBudget, Difficulty: model.Beginner,
			Successful: ok, TotalSelected: "10.00", SubmittedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	got, err := s.LoadAttempts("p1")
	if err != nil || len(got) != 2 {
		t.Fatalf("LoadAttempts = %d, %v", len(got), err)
	}
	if got[0].Successful || !got[1].Successful {
		t.Fatalf("order wrong: %+v", got)
	}
}

func TestTrackedFiles(t *testing.T) {
	s := openTest(t)
	if err := s.TrackFile("/x.yaml", FileInfo{MtimeNs: 5, SizeBytes: 10}); err != nil {
		t.Fatalf("TrackFile: %v", err)
	}
	got, _ := s.GetTrackedFiles()
	if got["/x.yaml"].SizeBytes != 10 {
		t.Fatalf("tracked = %+v", got)
	}
}
