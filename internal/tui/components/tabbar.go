package components

import (
	"fmt"

	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Pane names the two item regions, in display order.
var Pane = []string{"Available", "Selected"}

func paneLabel(i, count int) string {
	return fmt.Sprintf("%s (%d)", Pane[i], count)
}

// PaneVisualWidth returns the rendered width of a pane tab, including the
// horizontal padding applied by RenderPaneBar.
func PaneVisualWidth(i, count int) int {
	return lipgloss.Width(paneLabel(i, count)) + 2
}

// RenderPaneBar renders the pane switcher with the active pane highlighted.
// counts holds the number of items per pane.
func RenderPaneBar(active int, counts [2]int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	bar := ""
	for i := range Pane {
		if i > 0 {
			bar += sepStyle.Render(" ")
		}
		if i == active {
			bar += activeStyle.Render(paneLabel(i, counts[i]))
		} else {
			bar += inactiveStyle.Render(paneLabel(i, counts[i]))
		}
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// PaneAtX returns the pane index at column x of the pane bar, or -1.
func PaneAtX(x int, counts [2]int) int {
	pos := 0
	for i := range Pane {
		w := PaneVisualWidth(i, counts[i])
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
