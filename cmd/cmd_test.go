package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetsimd.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatalf("writePID: %v", err)
	}
	pid, err := readPID(path)
	if err != nil {
		t.Fatalf("readPID: %v", err)
	}
	if pid != 4242 {
		t.Fatalf("pid = %d, want 4242", pid)
	}
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetsimd.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Fatal("expected error for invalid pid")
	}
}

func TestEnsureServerNotRunning_MissingPIDFile(t *testing.T) {
	if err := ensureServerNotRunning(filepath.Join(t.TempDir(), "none.pid")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureServerNotRunning_Self(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetsimd.pid")
	if err := writePID(path, os.Getpid()); err != nil {
		t.Fatal(err)
	}
	if err := ensureServerNotRunning(path); err == nil {
		t.Fatal("expected error while the pid is alive")
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "budgetsimd.pid"))
	in := serverRuntimeState{
		PID:       7,
		Addr:      "127.0.0.1:8787",
		StartedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		DBPath:    "/tmp/budgetsim.db",
	}
	if err := writeState(path, in); err != nil {
		t.Fatalf("writeState: %v", err)
	}
	out, err := readState(path)
	if err != nil {
		t.Fatalf("readState: %v", err)
	}
	if out.PID != in.PID || out.Addr != in.Addr || !out.StartedAt.Equal(in.StartedAt) || out.DBPath != in.DBPath {
		t.Fatalf("state = %+v, want %+v", out, in)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("budget", "i")
	if err != nil {
		t.Fatalf("parseFilter: %v", err)
	}
	if f.Category != model.CategoryBudget || f.Difficulty != model.Intermediate {
		t.Fatalf("filter = %+v", f)
	}

	if _, err := parseFilter("gardening", ""); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if _, err := parseFilter("", "expert"); err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}

func TestResultQueryFromFlags(t *testing.T) {
	defer resetResultFlags()
	flagResultSim = 3
	flagResultSelected = "4, 2,9"
	flagResultTotal = "$1200.50"
	flagResultIncome = "2000"

	q, err := resultQueryFromFlags()
	if err != nil {
		t.Fatalf("resultQueryFromFlags: %v", err)
	}
	if q.SimulationID != 3 {
		t.Errorf("SimulationID = %d, want 3", q.SimulationID)
	}
	if len(q.Selected) != 3 || q.Selected[0] != 4 || q.Selected[1] != 2 || q.Selected[2] != 9 {
		t.Errorf("Selected = %v, want [4 2 9]", q.Selected)
	}
	if q.TotalSelected.String() != "1200.5" {
		t.Errorf("TotalSelected = %s, want 1200.5", q.TotalSelected)
	}
	if q.MonthlyIncome.String() != "2000" {
		t.Errorf("MonthlyIncome = %s, want 2000", q.MonthlyIncome)
	}
}

func TestResultQueryFromFlags_RequiresSource(t *testing.T) {
	defer resetResultFlags()
	if _, err := resultQueryFromFlags(); err == nil {
		t.Fatal("expected error without --url or --sim")
	}

	flagResultSim = 1
	flagResultIncome = "100"
	if _, err := resultQueryFromFlags(); err == nil {
		t.Fatal("expected error without --total")
	}

	flagResultTotal = "abc"
	if _, err := resultQueryFromFlags(); err == nil {
		t.Fatal("expected error for a malformed amount")
	}
}

func TestTruncateQuestion(t *testing.T) {
	if got := truncateQuestion("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateQuestion("abcdefghijk", 5); got != "abcd…" {
		t.Errorf("got %q, want %q", got, "abcd…")
	}
}

func TestNewClientWithoutServer(t *testing.T) {
	t.Setenv("BUDGETSIM_SERVER", "")
	t.Setenv("BUDGETSIM_PLAYER", "p-1")
	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = ""
	if _, err := newClient(&cfg); !errors.Is(err, errNoServer) {
		t.Fatalf("err = %v, want errNoServer", err)
	}
}

func resetResultFlags() {
	flagResultURL = ""
	flagResultSim = 0
	flagResultSelected = ""
	flagResultTotal = ""
	flagResultIncome = ""
}
