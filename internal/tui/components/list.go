package components

import (
	"strings"

	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ItemRow is one expense line in a pane.
type ItemRow struct {
	Name      string
	Amount    string
	Highlight bool // flagged by a revealed solution
}

// ItemList renders rows with a cursor, scrolled so the cursor stays within
// height lines. The cursor is only drawn when the list is focused.
func ItemList(rows []ItemRow, cursor int, focused bool, width, height int) string {
	t := theme.Active
	base := lipgloss.NewStyle().Background(t.Surface)

	if len(rows) == 0 {
		return base.Foreground(t.TextDim).Render("(empty)")
	}
	if height < 1 {
		height = 1
	}

	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}

	amountW := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Amount); w > amountW {
			amountW = w
		}
	}
	nameW := width - amountW - 4
	if nameW < 4 {
		nameW = 4
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := rows[i]
		selected := focused && i == cursor

		fg := t.TextPrimary
		bg := t.Surface
		marker := "  "
		if r.Highlight {
			fg = t.Orange
			marker = "! "
		}
		if selected {
			bg = t.SurfaceHover
			marker = "› "
		}
		st := lipgloss.NewStyle().Foreground(fg).Background(bg)
		amountSt := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		if selected {
			st = st.Bold(true)
		}

		name := truncate(r.Name, nameW)
		pad := strings.Repeat(" ", nameW-lipgloss.Width(name))
		amount := strings.Repeat(" ", amountW-lipgloss.Width(r.Amount)) + r.Amount
		lines = append(lines, st.Render(marker+name+pad)+amountSt.Render("  "+amount))
	}
	return strings.Join(lines, "\n")
}
