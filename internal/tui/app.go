// Package tui provides the interactive Bubble Tea play view for budgetsim.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/budgetsim/internal/budget"
	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/submission"
	"github.com/theirongolddev/budgetsim/internal/tui/components"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"
	"github.com/theirongolddev/budgetsim/internal/wire"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Backend is the server API the play view needs. *client.Client satisfies it.
type Backend interface {
	NextSimulation(ctx context.Context, category, difficulty string) (*model.Simulation, error)
	FetchSimulation(ctx context.Context, id int) (*model.Simulation, error)
	Submit(ctx context.Context, simulationID int, payload string) (model.Result, error)
	FetchResult(ctx context.Context, q wire.ResultQuery) (*wire.ResultPage, error)
}

// Options configure which simulation the app opens.
type Options struct {
	SimulationID int // when zero, the server picks the next one
	Category     string
	Difficulty   string
	BaseURL      string // server address used for result links
	NeedSetup    bool
}

// SimulationLoadedMsg is sent when a simulation fetch completes.
type SimulationLoadedMsg struct {
	Sim *model.Simulation
	Err error
}

// SubmitResultMsg is sent when the submission request settles.
type SubmitResultMsg struct {
	Result model.Result
	Err    error
}

// ResultLoadedMsg is sent when the result page data arrives.
type ResultLoadedMsg struct {
	Page *wire.ResultPage
	Err  error
}

type mode int

const (
	modeLoading mode = iota
	modePlay
	modeResult
)

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	opts    Options
	mode    mode

	// Current simulation
	sim     *model.Simulation
	tracker *budget.Tracker
	snap    budget.Snapshot
	series  chart.Series
	loadErr error

	// Selection UI
	focus  budget.Region
	cursor [2]int

	// Submission flow
	handler    *submission.Handler
	submitting bool
	feedback   *submission.Feedback
	solution   *submission.Solution
	alert      string
	notice     string

	// Result view
	resultURL    string
	result       *wire.ResultPage
	resultSeries chart.Series
	resultErr    error

	// UI state
	width    int
	height   int
	showHelp bool
	spinner  spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5

	requestTimeout = 20 * time.Second

	paneBarRow = 1 // screen row of the pane switcher
)

// NewApp creates a new play view.
func NewApp(backend Backend, opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		backend:   backend,
		opts:      opts,
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
	if a.needSetup {
		a.setupForm = newSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup && a.setupForm != nil {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.mode != modePlay || a.showHelp || a.needSetup {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key.Matches(msg, keys.Help) {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch a.mode {
		case modeLoading:
			switch {
			case key.Matches(msg, keys.Quit, keys.Clear):
				return a, tea.Quit
			case key.Matches(msg, keys.Adjust):
				if a.loadErr != nil {
					a.loadErr = nil
					return a, tea.Batch(a.loadCmd(), a.spinner.Tick)
				}
			}
			return a, nil
		case modeResult:
			return a.updateResultKeys(msg)
		}
		return a.updatePlayKeys(msg)

	case SimulationLoadedMsg:
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		if err := a.startSimulation(msg.Sim); err != nil {
			a.loadErr = err
		}
		return a, nil

	case SubmitResultMsg:
		return a.handleSubmitResult(msg)

	case ResultLoadedMsg:
		a.mode = modeResult
		a.resultErr = msg.Err
		a.result = msg.Page
		if msg.Page != nil {
			a.resultSeries = resultSeries(*msg.Page)
		}
		return a, nil

	case spinner.TickMsg:
		if a.mode == modeLoading || a.submitting {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.notice = "Could not save settings: " + err.Error()
		}
		a.needSetup = false
		a.setupForm = nil
		return a, tea.Batch(a.loadCmd(), a.spinner.Tick)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, tea.Batch(a.loadCmd(), a.spinner.Tick)
	}

	return a, cmd
}

// startSimulation resets all per-simulation state for sim.
func (a *App) startSimulation(sim *model.Simulation) error {
	tr, err := budget.NewTracker(sim.MonthlyIncome, sim.Expenses, nil)
	if err != nil {
		return fmt.Errorf("simulation %d: %w", sim.ID, err)
	}
	a.sim = sim
	a.tracker = tr
	a.focus = budget.Available
	a.cursor = [2]int{}
	a.handler = submission.NewHandler(a.opts.BaseURL)
	a.submitting = false
	a.feedback = nil
	a.solution = nil
	a.alert = ""
	a.result = nil
	a.resultURL = ""
	a.resultErr = nil
	a.mode = modePlay
	a.recompute()
	return nil
}

// recompute refreshes the snapshot and chart after any selection change.
func (a *App) recompute() {
	a.snap = a.tracker.Recompute()
	a.series = chart.FromSnapshot(a.snap)
	a.clampCursors()
}

func (a *App) clampCursors() {
	for _, r := range []budget.Region{budget.Available, budget.Selected} {
		n := a.tracker.Len(r)
		if a.cursor[r] >= n {
			a.cursor[r] = n - 1
		}
		if a.cursor[r] < 0 {
			a.cursor[r] = 0
		}
	}
}

// currentID returns the id under the cursor in the focused pane.
func (a App) currentID() (int, bool) {
	ids := a.tracker.IDs(a.focus)
	c := a.cursor[a.focus]
	if c < 0 || c >= len(ids) {
		return 0, false
	}
	return ids[c], true
}

func (a App) updatePlayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Clear):
		a.alert = ""
		a.notice = ""

	case key.Matches(msg, keys.SwitchPane):
		a.focus = a.focus.Other()

	case key.Matches(msg, keys.Down):
		if a.cursor[a.focus] < a.tracker.Len(a.focus)-1 {
			a.cursor[a.focus]++
		}

	case key.Matches(msg, keys.Up):
		if a.cursor[a.focus] > 0 {
			a.cursor[a.focus]--
		}

	case key.Matches(msg, keys.Top):
		a.cursor[a.focus] = 0

	case key.Matches(msg, keys.Bottom):
		a.cursor[a.focus] = a.tracker.Len(a.focus) - 1
		a.clampCursors()

	case key.Matches(msg, keys.Toggle):
		id, ok := a.currentID()
		if !ok {
			return a, nil
		}
		if _, err := a.tracker.Toggle(id); err != nil {
			a.alert = err.Error()
			return a, nil
		}
		a.recompute()

	case key.Matches(msg, keys.ShiftDown, keys.ShiftUp):
		id, ok := a.currentID()
		if !ok {
			return a, nil
		}
		delta := 1
		if key.Matches(msg, keys.ShiftUp) {
			delta = -1
		}
		if err := a.tracker.Shift(id, delta); err != nil {
			a.alert = err.Error()
			return a, nil
		}
		a.cursor[a.focus] += delta
		a.recompute()

	case key.Matches(msg, keys.Submit):
		return a.beginSubmit()

	case key.Matches(msg, keys.Solution):
		if a.feedback == nil {
			return a, nil
		}
		sol, err := a.handler.ShowSolution(a.tracker.IDs(budget.Available))
		if err != nil {
			if !errors.Is(err, submission.ErrSolutionShown) {
				a.alert = err.Error()
			}
			return a, nil
		}
		a.solution = &sol

	case key.Matches(msg, keys.Adjust):
		// Dismiss feedback so the adjusted budget can be submitted again.
		if a.feedback != nil {
			a.handler.Reset()
			a.feedback = nil
			a.solution = nil
			a.alert = ""
		}
	}
	return a, nil
}

func (a App) updateResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit, keys.Clear):
		return a, tea.Quit
	case key.Matches(msg, keys.Next):
		a.opts.SimulationID = 0
		a.mode = modeLoading
		a.sim = nil
		return a, tea.Batch(a.loadCmd(), a.spinner.Tick)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.cursor[a.focus] > 0 {
			a.cursor[a.focus]--
		}
	case tea.MouseButtonWheelDown:
		if a.cursor[a.focus] < a.tracker.Len(a.focus)-1 {
			a.cursor[a.focus]++
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == paneBarRow {
			if p := components.PaneAtX(msg.X, a.paneCounts()); p >= 0 {
				a.focus = budget.Region(p)
			}
		}
	}
	return a, nil
}

func (a App) paneCounts() [2]int {
	return [2]int{a.tracker.Len(budget.Available), a.tracker.Len(budget.Selected)}
}

// beginSubmit takes the submission guard and sends the payload.
func (a App) beginSubmit() (tea.Model, tea.Cmd) {
	if err := a.handler.Begin(); err != nil {
		switch {
		case errors.Is(err, submission.ErrInFlight):
			a.notice = "Submission in progress..."
		case errors.Is(err, submission.ErrClosed):
			a.notice = "Press r to adjust and resubmit."
		}
		return a, nil
	}
	a.submitting = true
	a.alert = ""
	a.notice = ""
	return a, tea.Batch(submitCmd(a.backend, a.sim.ID, a.snap.Payload()), a.spinner.Tick)
}

func (a App) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	a.submitting = false
	if msg.Err != nil {
		a.alert = a.handler.Fail(msg.Err)
		return a, nil
	}

	out, err := a.handler.Complete(msg.Result)
	if err != nil {
		a.alert = a.handler.Fail(err)
		return a, nil
	}

	if out.RedirectURL != "" {
		a.resultURL = out.RedirectURL
		if sr, ok := msg.Result.(model.SuccessResult); ok {
			if sr.XPEarned > 0 {
				a.notice = fmt.Sprintf("+%d XP", sr.XPEarned)
			}
			if sr.Feedback != "" {
				a.notice = strings.TrimSpace(a.notice + "  " + sr.Feedback)
			}
		}
		q, err := submission.ParseResultURL(out.RedirectURL)
		if err != nil {
			a.mode = modeResult
			a.resultErr = err
			return a, nil
		}
		return a, fetchResultCmd(a.backend, q)
	}

	a.feedback = out.Feedback
	a.solution = nil
	return a, nil
}

// ─── Commands ───────────────────────────────────────────────────

func (a App) loadCmd() tea.Cmd {
	backend, opts := a.backend, a.opts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var sim *model.Simulation
		var err error
		if opts.SimulationID > 0 {
			sim, err = backend.FetchSimulation(ctx, opts.SimulationID)
		} else {
			sim, err = backend.NextSimulation(ctx, opts.Category, opts.Difficulty)
		}
		return SimulationLoadedMsg{Sim: sim, Err: err}
	}
}

func submitCmd(backend Backend, simID int, payload string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := backend.Submit(ctx, simID, payload)
		return SubmitResultMsg{Result: res, Err: err}
	}
}

func fetchResultCmd(backend Backend, q wire.ResultQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := backend.FetchResult(ctx, q)
		return ResultLoadedMsg{Page: page, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func resultSeries(page wire.ResultPage) chart.Series {
	labels := make([]string, len(page.Chart))
	amounts := make([]decimal.Decimal, len(page.Chart))
	for i, s := range page.Chart {
		labels[i] = s.Label
		amounts[i] = decimal.NewFromFloat(s.Amount)
	}
	return chart.FromLabeled(labels, amounts)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
