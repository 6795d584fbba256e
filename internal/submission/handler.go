// Package submission drives one budget submission from the play view:
// guarding against double submits, turning graded results into either a
// result-page redirect or an in-place feedback view, and revealing the
// solution once per failed attempt.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/wire"
)

// AlertText is shown when a submission could not be completed.
const AlertText = "An error occurred while submitting your budget. Please try again."

// AdjustmentHeader heads the feedback panel of a rejected budget.
const AdjustmentHeader = "Budget Needs Adjustment"

var (
	// ErrInFlight is returned by Begin while a submission is pending.
	ErrInFlight = errors.New("submission already in progress")
	// ErrClosed is returned by Begin once feedback or a redirect has been produced.
	ErrClosed = errors.New("submission already completed")
	// ErrSolutionShown is returned by a second ShowSolution call.
	ErrSolutionShown = errors.New("solution already shown")
	// ErrNoFeedback is returned by ShowSolution when no failure is on display.
	ErrNoFeedback = errors.New("no feedback to explain")
	// ErrNotSubmitting is returned by Complete without a matching Begin.
	ErrNotSubmitting = errors.New("no submission in progress")
)

// State is the position of a Handler in the submit flow.
type State int

// Submission states.
const (
	Idle State = iota
	Submitting
	FeedbackShown
	Redirecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case FeedbackShown:
		return "feedback"
	case Redirecting:
		return "redirecting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Summary is the totals block of the feedback panel.
type Summary struct {
	TotalSelected decimal.Decimal
	MonthlyIncome decimal.Decimal
	Difference    decimal.Decimal // income minus total
}

// WithinBudget reports whether the difference is styled as a success.
func (s Summary) WithinBudget() bool { return !s.Difference.IsNegative() }

// DifferenceDisplay formats the difference the same way as every other
// amount, e.g. "$-100.00".
func (s Summary) DifferenceDisplay() string {
	return model.FormatMoney(s.Difference)
}

// Feedback is rendered in place of the submit control after a rejected budget.
type Feedback struct {
	Header            string
	Message           string
	Details           []string
	Summary           Summary
	SolutionAvailable bool
}

// MissingItem is an essential expense the player left out. Highlight is
// set when the item is still sitting in the available region.
type MissingItem struct {
	model.Expense
	Highlight bool
}

// SolutionRow is one selected expense in the solution table.
type SolutionRow struct {
	model.Expense
}

// Badge labels the row as essential or optional.
func (r SolutionRow) Badge() string {
	if r.Essential {
		return "Essential"
	}
	return "Optional"
}

// Solution is revealed once per failed attempt.
type Solution struct {
	Missing  []MissingItem
	Selected []SolutionRow
}

// Outcome is what the caller must do after a submission settles: follow
// RedirectURL, render Feedback, or show Alert. Exactly one is set.
type Outcome struct {
	RedirectURL string
	Feedback    *Feedback
	Alert       string
}

// Submitter posts a selection payload for grading.
type Submitter interface {
	Submit(ctx context.Context, simulationID int, payload string) (model.Result, error)
}

// Handler tracks a single play view's submit flow. It is safe for
// concurrent use.
type Handler struct {
	mu       sync.Mutex
	state    State
	baseURL  string
	failure  *model.FailureResult
	revealed bool

	// Logf receives the cause of failed submissions. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewHandler returns an idle handler whose redirects point at baseURL.
func NewHandler(baseURL string) *Handler {
	return &Handler{baseURL: strings.TrimRight(baseURL, "/"), Logf: log.Printf}
}

// State returns the current state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Begin enters Submitting. Only one submission may be pending at a time.
func (h *Handler) Begin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case Submitting:
		return ErrInFlight
	case FeedbackShown, Redirecting:
		return ErrClosed
	}
	h.state = Submitting
	return nil
}

// Complete settles a pending submission with the graded result.
func (h *Handler) Complete(r model.Result) (Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Submitting {
		return Outcome{}, ErrNotSubmitting
	}

	switch res := r.(type) {
	case model.SuccessResult:
		h.state = Redirecting
		return Outcome{RedirectURL: ResultURL(h.baseURL, res)}, nil
	case model.FailureResult:
		h.state = FeedbackShown
		h.failure = &res
		h.revealed = false
		return Outcome{Feedback: feedbackFor(res)}, nil
	}
	h.state = Idle
	return Outcome{}, fmt.Errorf("unexpected result type %T", r)
}

// Fail abandons a pending submission and returns the alert to show.
func (h *Handler) Fail(err error) string {
	h.mu.Lock()
	if h.state == Submitting {
		h.state = Idle
	}
	logf := h.Logf
	h.mu.Unlock()

	if logf != nil {
		logf("budgetsim: submit failed: %v", err)
	}
	return AlertText
}

// Reset returns to Idle so the player can adjust and resubmit after
// feedback. A pending submission is left alone.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Submitting {
		return
	}
	h.state = Idle
	h.failure = nil
	h.revealed = false
}

// SolutionAvailable reports whether ShowSolution would succeed.
func (h *Handler) SolutionAvailable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == FeedbackShown && h.failure != nil && !h.revealed
}

// ShowSolution reveals the missing essentials and the selected items of
// the failure on display. availableIDs are the ids still in the
// available region, in any order.
func (h *Handler) ShowSolution(availableIDs []int) (Solution, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != FeedbackShown || h.failure == nil {
		return Solution{}, ErrNoFeedback
	}
	if h.revealed {
		return Solution{}, ErrSolutionShown
	}
	h.revealed = true

	avail := make(map[int]bool, len(availableIDs))
	for _, id := range availableIDs {
		avail[id] = true
	}

	sol := Solution{
		Missing:  make([]MissingItem, 0, len(h.failure.MissingEssential)),
		Selected: make([]SolutionRow, 0, len(h.failure.Selected)),
	}
	for _, e := range h.failure.MissingEssential {
		sol.Missing = append(sol.Missing, MissingItem{Expense: e, Highlight: avail[e.ID]})
	}
	for _, e := range h.failure.Selected {
		sol.Selected = append(sol.Selected, SolutionRow{Expense: e})
	}
	return sol, nil
}

// Submit runs one full submission: Begin, post, then Complete or Fail.
// A Begin error is returned as is; a transport error yields an Alert
// outcome together with the error.
func (h *Handler) Submit(ctx context.Context, s Submitter, simulationID int, payload string) (Outcome, error) {
	if err := h.Begin(); err != nil {
		return Outcome{}, err
	}
	res, err := s.Submit(ctx, simulationID, payload)
	if err != nil {
		return Outcome{Alert: h.Fail(err)}, err
	}
	out, err := h.Complete(res)
	if err != nil {
		return Outcome{Alert: h.Fail(err)}, err
	}
	return out, nil
}

// ResultURL builds the result-page address for a successful submission.
func ResultURL(baseURL string, r model.SuccessResult) string {
	q := wire.ResultQuery{
		SimulationID:  r.SimID,
		Selected:      r.SelectedIDs,
		TotalSelected: r.TotalSelected,
		MonthlyIncome: r.MonthlyIncome,
	}
	return q.URL(strings.TrimRight(baseURL, "/") + "/result")
}

// ParseResultURL decodes the parameters of a result-page address.
func ParseResultURL(raw string) (wire.ResultQuery, error) {
	return wire.ParseResultURL(raw)
}

func feedbackFor(r model.FailureResult) *Feedback {
	msg := r.Feedback
	if msg == "" && len(r.FeedbackAll) > 0 {
		msg = r.FeedbackAll[0]
	}
	return &Feedback{
		Header:  AdjustmentHeader,
		Message: msg,
		Details: r.FeedbackAll,
		Summary: Summary{
			TotalSelected: r.TotalSelected,
			MonthlyIncome: r.MonthlyIncome,
			Difference:    r.BudgetDifference,
		},
		SolutionAvailable: true,
	}
}
