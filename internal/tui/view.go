package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/budgetsim/internal/budget"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/submission"
	"github.com/theirongolddev/budgetsim/internal/tui/components"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}

	switch a.mode {
	case modeLoading:
		return a.viewLoading()
	case modeResult:
		return a.viewFrame(a.renderResult(a.contentWidth()), resultHints)
	}
	return a.viewFrame(a.renderPlay(a.contentWidth(), a.playContentHeight()), a.playHints())
}

const resultHints = "[n]ext simulation  [?]help  [q]uit"

func (a App) playHints() string {
	switch {
	case a.feedback != nil && a.solution == nil:
		return "[v] show solution  [r] adjust and resubmit  [?]help  [q]uit"
	case a.feedback != nil:
		return "[r] adjust and resubmit  [?]help  [q]uit"
	}
	return "[tab] switch  [enter] add/remove  [J/K] reorder  [s]ubmit  [?]help  [q]uit"
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  budgetsim needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ budgetsim"))
	b.WriteString(subtitleStyle.Render(" · Budget Simulator"))
	b.WriteString("\n\n")

	if a.loadErr != nil {
		b.WriteString(errStyle.Render("Could not load a simulation:"))
		b.WriteString("\n")
		b.WriteString(errStyle.Render(truncStr(a.loadErr.Error(), 60)))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("[r] retry  [q] quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Fetching simulation..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := keys.helpSections()
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			h := bind.Help()
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
				descStyle.Render(h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// viewFrame stacks header, content and status bar over the full terminal.
func (a App) viewFrame(content, hints string) string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := a.renderHeader(w)
	right := a.notice
	if a.submitting {
		right = a.spinner.View() + " Submitting..."
	}
	statusBar := components.RenderStatusBar(w, hints, right)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderHeader is two rows: the title line, then the pane switcher
// (play mode) or a blank surface row.
func (a App) renderHeader(w int) string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)

	title := logoStyle.Render(" ◈ budgetsim")
	if a.sim != nil {
		title += metaStyle.Render(fmt.Sprintf("  #%d · %s · %s",
			a.sim.ID, a.sim.Category.Display(), a.sim.Difficulty.Display()))
	}
	row1 := rowStyle.Render(title)

	row2 := rowStyle.Render("")
	if a.mode == modePlay && a.tracker != nil {
		row2 = components.RenderPaneBar(int(a.focus), a.paneCounts(), w)
	}
	return row1 + "\n" + row2
}

func (a App) playContentHeight() int {
	h := a.height - 3 // header rows + status bar
	if h < minContentHeight {
		h = minContentHeight
	}
	return h
}

// renderPlay draws the question, the budget cards, both panes with the
// chart, and the feedback panel when a submission was rejected.
func (a App) renderPlay(cw, contentH int) string {
	t := theme.Active
	if a.tracker == nil {
		return ""
	}

	questionStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true).Width(cw).Padding(0, 1)
	alertStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Background).Bold(true).Padding(0, 1)

	var b strings.Builder
	b.WriteString(questionStyle.Render(a.sim.Question))
	b.WriteString("\n")

	remainingColor := t.Money(a.snap.RemainingStyle() == budget.StyleNegative)
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Monthly Income", Value: model.FormatMoney(a.snap.MonthlyIncome)},
		{Label: "Total Expenses", Value: a.snap.TotalDisplay(), Note: fmt.Sprintf("%d selected", len(a.snap.SelectedIDs))},
		{Label: "Remaining", Value: a.snap.RemainingDisplay(), Color: remainingColor},
	}, cw))
	b.WriteString("\n")

	gaugeW := cw - 16
	if gaugeW > 60 {
		gaugeW = 60
	}
	b.WriteString(lipgloss.NewStyle().Background(t.Surface).Padding(0, 1).Render(
		components.BudgetGauge(a.snap.TotalExpenses, a.snap.MonthlyIncome, gaugeW)))
	b.WriteString("\n")

	if a.alert != "" {
		b.WriteString(alertStyle.Render("⚠ " + a.alert))
		b.WriteString("\n")
	}

	used := lipgloss.Height(b.String())
	panel := ""
	if a.feedback != nil {
		panel = a.renderFeedback(cw)
	}
	listH := contentH - used - lipgloss.Height(panel) - 4 // card border + title + spacing
	if listH < 3 {
		listH = 3
	}

	widths := components.LayoutRow(cw, 3)
	cards := []string{
		a.renderPane(budget.Available, widths[0], listH),
		a.renderPane(budget.Selected, widths[1], listH),
		components.ContentCard("Allocation",
			components.AllocationChart(a.series, components.CardInnerWidth(widths[2])), widths[2], false),
	}
	b.WriteString(components.CardRow(cards))

	if panel != "" {
		b.WriteString("\n")
		b.WriteString(panel)
	}
	return b.String()
}

func (a App) renderPane(r budget.Region, outerW, listH int) string {
	highlight := map[int]bool{}
	if a.solution != nil && r == budget.Available {
		for _, m := range a.solution.Missing {
			if m.Highlight {
				highlight[m.ID] = true
			}
		}
	}

	items := a.tracker.Items(r)
	rows := make([]components.ItemRow, len(items))
	for i, e := range items {
		rows[i] = components.ItemRow{
			Name:      e.Name,
			Amount:    model.FormatMoney(e.Amount),
			Highlight: highlight[e.ID],
		}
	}

	focused := a.focus == r
	body := components.ItemList(rows, a.cursor[r], focused, components.CardInnerWidth(outerW), listH)
	return components.ContentCard(components.Pane[r], body, outerW, focused)
}

// renderFeedback draws the "needs adjustment" panel and, once revealed,
// the solution.
func (a App) renderFeedback(cw int) string {
	t := theme.Active
	fb := a.feedback

	headerStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	diffStyle := lipgloss.NewStyle().Foreground(t.Money(!fb.Summary.WithinBudget())).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render("⚠ " + fb.Header))
	b.WriteString("\n")
	if fb.Message != "" {
		b.WriteString(textStyle.Render(fb.Message))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("Total: ") + textStyle.Render(model.FormatMoney(fb.Summary.TotalSelected)))
	b.WriteString(mutedStyle.Render("   Income: ") + textStyle.Render(model.FormatMoney(fb.Summary.MonthlyIncome)))
	b.WriteString(mutedStyle.Render("   Difference: ") + diffStyle.Render(fb.Summary.DifferenceDisplay()))

	if a.solution != nil {
		b.WriteString("\n\n")
		b.WriteString(renderSolution(*a.solution))
	}
	return components.ContentCard("Feedback", b.String(), cw, false)
}

func renderSolution(sol submission.Solution) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	flagStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Missing essential expenses"))
	if len(sol.Missing) == 0 {
		b.WriteString("\n" + textStyle.Render("  none"))
	}
	for _, m := range sol.Missing {
		line := fmt.Sprintf("  %s  %s", m.Name, model.FormatMoney(m.Amount))
		if m.Highlight {
			b.WriteString("\n" + flagStyle.Render(line+"  ← still available"))
		} else {
			b.WriteString("\n" + textStyle.Render(line))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Your selection"))
	if len(sol.Selected) == 0 {
		b.WriteString("\n" + textStyle.Render("  nothing selected"))
	}
	for _, r := range sol.Selected {
		fg, bg := t.Badge(r.Essential)
		badge := lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1).Render(r.Badge())
		b.WriteString("\n" + textStyle.Render(fmt.Sprintf("  %-24s %12s ", truncStr(r.Name, 24), model.FormatMoney(r.Amount))) + badge)
	}
	return b.String()
}

// renderResult draws the result view: totals, the allocation chart and the
// selected expenses.
func (a App) renderResult(cw int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Background).Bold(true).Padding(0, 1)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Background).Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("✓ Budget accepted"))
	b.WriteString("\n")

	if a.resultErr != nil || a.result == nil {
		msg := "result unavailable"
		if a.resultErr != nil {
			msg = a.resultErr.Error()
		}
		b.WriteString(errStyle.Render("Could not load the result: " + msg))
		b.WriteString("\n")
		if a.resultURL != "" {
			b.WriteString(mutedStyle.Render(a.resultURL))
		}
		return b.String()
	}

	page := a.result
	total := decimal.NewFromFloat(page.TotalSelected)
	income := decimal.NewFromFloat(page.MonthlyIncome)
	diff := decimal.NewFromFloat(page.BudgetDifference)

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Selected", Value: model.FormatMoney(total)},
		{Label: "Monthly Income", Value: model.FormatMoney(income)},
		{Label: "Budget Difference", Value: model.FormatMoney(diff), Color: t.Money(diff.IsNegative())},
	}, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)

	var rows strings.Builder
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	nameW := components.CardInnerWidth(widths[0]) - 26
	if nameW < 8 {
		nameW = 8
	}
	for i, e := range page.Selected {
		if i > 0 {
			rows.WriteString("\n")
		}
		fg, bg := t.Badge(e.Essential)
		label := "Optional"
		if e.Essential {
			label = "Essential"
		}
		badge := lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1).Render(label)
		rows.WriteString(textStyle.Render(fmt.Sprintf("%-*s %12s ", nameW, truncStr(e.Name, nameW),
			model.FormatMoney(decimal.NewFromFloat(e.Amount)))) + badge)
	}
	if len(page.Selected) == 0 {
		rows.WriteString(textStyle.Render("No expenses selected."))
	}

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Selected Expenses", rows.String(), widths[0], false),
		components.ContentCard("Allocation",
			components.AllocationChart(a.resultSeries, components.CardInnerWidth(widths[1])), widths[1], false),
	}))
	b.WriteString("\n")
	if a.resultURL != "" {
		b.WriteString(mutedStyle.Render(truncStr(a.resultURL, cw-2)))
	}
	return b.String()
}
