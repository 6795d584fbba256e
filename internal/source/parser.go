// Package source discovers, decodes, and validates simulation catalog files.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/budgetsim/internal/model"

	"gopkg.in/yaml.v3"
)

// Validation failures for a single catalog entry.
var (
	ErrQuestionRequired = errors.New("question is required")
	ErrIncomeRequired   = errors.New("monthly income is required")
	ErrBadDifficulty    = errors.New("difficulty must be B, I, or A")
	ErrBadCategory      = errors.New("unknown category")
	ErrNoExpenses       = errors.New("at least one expense is required")
	ErrNegativeAmount   = errors.New("expense amount must not be negative")
	ErrEssentialsExceed = errors.New("essential expenses exceed monthly income")
)

// EntryError ties a validation failure to its 1-based position in a file.
type EntryError struct {
	Path  string
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: simulation %d: %v", e.Path, e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Entry is a validated simulation together with where it came from.
type Entry struct {
	Path       string
	Index      int
	Simulation model.Simulation
}

// ParseResult holds the output of parsing a single catalog file.
type ParseResult struct {
	Entries []Entry
	Invalid []*EntryError
	Total   int
	Err     error
}

// ParseFile reads a catalog and validates every entry. A file that cannot be
// read or decoded sets Err; per-entry failures are collected in Invalid.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path) //nolint:gosec // path comes from the user's catalog directory
	if err != nil {
		return ParseResult{Err: err}
	}
	raws, err := Decode(data, df.Format)
	if err != nil {
		return ParseResult{Err: fmt.Errorf("%s: %w", df.Path, err)}
	}

	res := ParseResult{Total: len(raws)}
	for i, raw := range raws {
		sim, err := Validate(raw)
		if err != nil {
			res.Invalid = append(res.Invalid, &EntryError{Path: df.Path, Index: i + 1, Err: err})
			continue
		}
		res.Entries = append(res.Entries, Entry{Path: df.Path, Index: i + 1, Simulation: sim})
	}
	return res
}

// Decode accepts either a top-level list of simulations or an object with a
// "simulations" list.
func Decode(data []byte, format Format) ([]RawSimulation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if format == FormatYAML {
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		root := node.Content[0]
		if root.Kind == yaml.SequenceNode {
			var raws []RawSimulation
			if err := root.Decode(&raws); err != nil {
				return nil, fmt.Errorf("decoding yaml: %w", err)
			}
			return raws, nil
		}
		var env catalogEnvelope
		if err := root.Decode(&env); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		return env.Simulations, nil
	}

	if trimmed[0] == '[' {
		var raws []RawSimulation
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		return raws, nil
	}
	var env catalogEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return env.Simulations, nil
}

// Validate converts a raw entry into a simulation. Category defaults to
// budgeting when omitted.
func Validate(raw RawSimulation) (model.Simulation, error) {
	question := strings.TrimSpace(raw.Question)
	if question == "" {
		return model.Simulation{}, ErrQuestionRequired
	}
	if raw.MonthlyIncome == nil || !raw.MonthlyIncome.IsPositive() {
		return model.Simulation{}, ErrIncomeRequired
	}
	diff, ok := model.ParseDifficulty(raw.Difficulty)
	if !ok || len(strings.TrimSpace(raw.Difficulty)) != 1 {
		return model.Simulation{}, ErrBadDifficulty
	}
	cat := model.CategoryBudget
	if raw.Category != "" {
		if cat, ok = model.ParseCategory(raw.Category); !ok {
			return model.Simulation{}, fmt.Errorf("%w %q", ErrBadCategory, raw.Category)
		}
	}
	if len(raw.Expenses) == 0 {
		return model.Simulation{}, ErrNoExpenses
	}

	sim := model.Simulation{
		Question:      question,
		Category:      cat,
		Difficulty:    diff,
		MonthlyIncome: raw.MonthlyIncome.Decimal,
		Expenses:      make([]model.Expense, 0, len(raw.Expenses)),
	}
	for _, re := range raw.Expenses {
		if re.Amount.IsNegative() {
			return model.Simulation{}, fmt.Errorf("%s: %w", re.Name, ErrNegativeAmount)
		}
		sim.Expenses = append(sim.Expenses, model.Expense{
			Name:      strings.TrimSpace(re.Name),
			Amount:    re.Amount.Decimal,
			Essential: re.Essential,
			Feedback:  re.Feedback,
		})
	}

	if ess := sim.EssentialTotal(); ess.GreaterThan(sim.MonthlyIncome) {
		return model.Simulation{}, fmt.Errorf("%w ($%s > $%s)",
			ErrEssentialsExceed, ess.StringFixed(2), sim.MonthlyIncome.StringFixed(2))
	}
	return sim, nil
}

