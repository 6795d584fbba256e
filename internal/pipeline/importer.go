package pipeline

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/source"
	"github.com/theirongolddev/budgetsim/internal/store"
)

// ErrDuplicateQuestion is returned for a question that is already stored or
// appears earlier in the same import.
var ErrDuplicateQuestion = errors.New("question already exists")

// ImportResult summarizes an import or dry run.
type ImportResult struct {
	Saved    []model.Simulation
	Accepted int
	Rejected []*source.EntryError
	DryRun   bool
}

// Import stores every valid entry whose question is new. With dryRun set
// nothing is written. st may be nil for a dry run without a database.
func Import(st *store.Store, lr *LoadResult, dryRun bool) (*ImportResult, error) {
	res := &ImportResult{DryRun: dryRun}
	res.Rejected = append(res.Rejected, lr.Invalid...)

	seen := make(map[string]bool, len(lr.Entries))
	for _, e := range lr.Entries {
		q := e.Simulation.Question
		dup := seen[q]
		if !dup && st != nil {
			exists, err := st.QuestionExists(q)
			if err != nil {
				return nil, fmt.Errorf("checking %q: %w", q, err)
			}
			dup = exists
		}
		if dup {
			res.Rejected = append(res.Rejected, &source.EntryError{Path: e.Path, Index: e.Index, Err: ErrDuplicateQuestion})
			continue
		}
		seen[q] = true
		res.Accepted++

		if dryRun {
			continue
		}
		sim := e.Simulation
		if err := st.SaveSimulation(&sim, e.Path); err != nil {
			res.Accepted--
			res.Rejected = append(res.Rejected, &source.EntryError{Path: e.Path, Index: e.Index, Err: err})
			continue
		}
		res.Saved = append(res.Saved, sim)
	}

	if !dryRun && st != nil {
		if err := TrackFiles(st, lr.Parsed); err != nil {
			return res, err
		}
	}
	return res, nil
}
