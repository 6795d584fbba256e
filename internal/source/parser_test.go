package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/budgetsim/internal/model"
)

// writeCatalog creates a temp catalog file and returns a DiscoveredFile for it.
func writeCatalog(t *testing.T, name, body string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Format: formatFor(path)}
}

func TestParseFile_JSONList(t *testing.T) {
	df := writeCatalog(t, "c.json", `[
	  {"question": "First job", "monthly_income": 2000, "difficulty": "B",
	   "expenses": [
	     {"name": "Rent", "amount": 1000, "essential": true, "feedback": "Need a home."},
	     {"name": "Games", "amount": "59.99", "essential": false, "feedback": "Fun."}
	   ]}
	]`)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("Total = %d, Entries = %d, want 1/1", res.Total, len(res.Entries))
	}
	sim := res.Entries[0].Simulation
	if sim.Category != model.CategoryBudget {
		t.Errorf("Category = %q, want default BUD", sim.Category)
	}
	if sim.Expenses[1].Amount.String() != "59.99" {
		t.Errorf("Amount = %s, want 59.99", sim.Expenses[1].Amount)
	}
}

func TestParseFile_YAMLEnvelope(t *testing.T) {
	df := writeCatalog(t, "c.yaml", `
simulations:
  - question: Tax refund
    monthly_income: 3200.50
    difficulty: A
    category: taxes
    expenses:
      - name: Rent
        amount: 1500
        essential: true
        feedback: Always pay rent.
`)
	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("Entries = %d, want 1 (invalid: %v)", len(res.Entries), res.Invalid)
	}
	sim := res.Entries[0].Simulation
	if sim.Category != model.CategoryTaxes || sim.Difficulty != model.Advanced {
		t.Errorf("got %q/%q", sim.Category, sim.Difficulty)
	}
	if sim.MonthlyIncome.StringFixed(2) != "3200.50" {
		t.Errorf("MonthlyIncome = %s", sim.MonthlyIncome)
	}
}

func TestParseFile_CollectsEntryErrors(t *testing.T) {
	df := writeCatalog(t, "bad.json", `[
	  {"question": "", "monthly_income": 100, "difficulty": "B", "expenses": [{"name": "x", "amount": 1}]},
	  {"question": "q2", "monthly_income": 100, "difficulty": "Z", "expenses": [{"name": "x", "amount": 1}]},
	  {"question": "q3", "monthly_income": 100, "difficulty": "I", "expenses": []},
	  {"question": "q4", "difficulty": "I", "expenses": [{"name": "x", "amount": 1}]},
	  {"question": "q5", "monthly_income": 100, "difficulty": "I",
	   "expenses": [{"name": "a", "amount": 80, "essential": true}, {"name": "b", "amount": 30, "essential": true}]},
	  {"question": "q6", "monthly_income": 100, "difficulty": "I", "expenses": [{"name": "x", "amount": 1}]}
	]`)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Index != 6 {
		t.Fatalf("Entries = %+v, want only #6", res.Entries)
	}
	want := []error{ErrQuestionRequired, ErrBadDifficulty, ErrNoExpenses, ErrIncomeRequired, ErrEssentialsExceed}
	if len(res.Invalid) != len(want) {
		t.Fatalf("Invalid = %d, want %d", len(res.Invalid), len(want))
	}
	for i, w := range want {
		if !errors.Is(res.Invalid[i], w) {
			t.Errorf("Invalid[%d] = %v, want %v", i, res.Invalid[i], w)
		}
	}
}

func TestParseFile_MalformedFile(t *testing.T) {
	df := writeCatalog(t, "broken.json", `[{"question": `)
	if res := ParseFile(df); res.Err == nil {
		t.Fatal("expected decode error")
	}
	missing := DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.json"), Format: FormatJSON}
	if res := ParseFile(missing); res.Err == nil {
		t.Fatal("expected read error")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.yml", "c.YAML", "notes.txt", ".hidden/d.json"} {
		p := filepath.Join(dir, name)
		_ = os.MkdirAll(filepath.Dir(p), 0o750)
		if err := os.WriteFile(p, []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("found %d files, want 3: %+v", len(files), files)
	}
	if files[1].Format != FormatYAML || files[2].Format != FormatYAML {
		t.Errorf("formats = %+v", files)
	}

	single, _ := ScanDir(filepath.Join(dir, "a.json"))
	if len(single) != 1 || single[0].Format != FormatJSON {
		t.Errorf("single = %+v", single)
	}
	none, err := ScanDir(filepath.Join(dir, "missing"))
	if err != nil || none != nil {
		t.Errorf("missing dir = %v, %v", none, err)
	}
}
