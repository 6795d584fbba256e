package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder  = lipgloss.Color("#282726")
	ColorTextDim = lipgloss.Color("#575653")
	ColorText    = lipgloss.Color("#FFFCF0")
	ColorAccent  = lipgloss.Color("#3AA99F")
	ColorGreen   = lipgloss.Color("#879A39")
	ColorRed     = lipgloss.Color("#D14D41")
	ColorYellow  = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	xpStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output. Cells that look
// like amounts or counts are right-aligned, everything else left-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderMoney formats an amount, red when negative.
func RenderMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return badStyle.Render(FormatMoney(d))
	}
	return FormatMoney(d)
}

// RenderDifference formats a signed budget difference, green when the
// budget holds and red when it is exceeded.
func RenderDifference(d decimal.Decimal) string {
	if d.IsNegative() {
		return badStyle.Render(FormatSignedMoney(d))
	}
	return goodStyle.Render(FormatSignedMoney(d))
}

// RenderXP formats an experience point total.
func RenderXP(xp int) string {
	return xpStyle.Render(FormatXP(xp))
}

// RenderOutcome renders a pass/fail marker.
func RenderOutcome(ok bool) string {
	if ok {
		return goodStyle.Render("passed")
	}
	return badStyle.Render("failed")
}

// RenderSwatch renders a two-cell block in the given hex color.
func RenderSwatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
// A row holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		cells := make([]string, numCols)
		for i := range cells {
			if i < len(t.Headers) {
				cells[i] = headerStyle.Render(" " + padRight(t.Headers[i], widths[i]) + " ")
			} else {
				cells[i] = strings.Repeat(" ", widths[i]+2)
			}
		}
		b.WriteString(row(cells))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		cells := make([]string, numCols)
		for i := range cells {
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			if looksNumeric(cell) {
				cell = padLeft(cell, widths[i])
			} else {
				cell = padRight(cell, widths[i])
			}
			cells[i] = valueStyle.Render(" " + cell + " ")
		}
		b.WriteString(row(cells))
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == "---" {
			continue
		}
		for i, cell := range r {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func rule(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
}

func row(cells []string) string {
	sep := dimStyle.Render("│")
	return sep + strings.Join(cells, sep) + sep + "\n"
}

// looksNumeric reports whether a plain cell holds an amount, count or
// percentage, e.g. "$1,200.00", "-$4.50", "12", "40.0%".
func looksNumeric(cell string) bool {
	s := strings.TrimLeft(cell, "+-")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' && r != '%' {
			return false
		}
	}
	return true
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %-12s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	barLen = min(max(barLen, 0), maxWidth)
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", maxWidth-barLen)
	return fmt.Sprintf("  %-12s %s", label, xpStyle.Render(bar))
}

func padRight(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
