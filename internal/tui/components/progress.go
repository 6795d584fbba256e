package components

import (
	"fmt"

	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ColorForPct returns green/yellow/orange/red based on how much of the
// income is spent. Anything past the income is red.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct > 1:
		return string(t.Red)
	case pct >= 0.95:
		return string(t.Orange)
	case pct >= 0.8:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// SpentPct returns total as a fraction of income, zero when income is not
// positive.
func SpentPct(total, income decimal.Decimal) float64 {
	if !income.IsPositive() {
		return 0
	}
	return total.Div(income).InexactFloat64()
}

// BudgetGauge renders a labelled bar of how much of the income the
// selection uses.
func BudgetGauge(total, income decimal.Decimal, barWidth int) string {
	t := theme.Active

	pct := SpentPct(total, income)
	shown := pct
	if shown < 0 {
		shown = 0
	}
	if shown > 1 {
		shown = 1
	}

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render("Spent") +
		spaceStyle.Render(" ") +
		bar.ViewAs(shown) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
