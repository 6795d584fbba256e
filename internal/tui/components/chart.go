package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// AllocationChart renders a series as a stacked horizontal bar followed by
// a legend. It is the terminal counterpart of the result page pie.
func AllocationChart(s chart.Series, width int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	slices := s.Slices()
	if len(slices) == 0 {
		return dimStyle.Render("Nothing to chart yet.")
	}
	if width < 10 {
		width = 10
	}

	fracs := make([]float64, len(slices))
	for i, sl := range slices {
		fracs[i] = sl.Fraction
	}
	cells := BarCells(fracs, width)

	var b strings.Builder
	for i, sl := range slices {
		if cells[i] == 0 {
			continue
		}
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(sl.Color.Hex())).Background(t.Surface)
		b.WriteString(st.Render(strings.Repeat("█", cells[i])))
	}
	b.WriteString("\n\n")

	labelW := 0
	for _, sl := range slices {
		if w := lipgloss.Width(sl.Label); w > labelW {
			labelW = w
		}
	}
	if maxW := width - 22; labelW > maxW {
		labelW = maxW
	}
	if labelW < 4 {
		labelW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	for i, sl := range slices {
		sw := lipgloss.NewStyle().Foreground(lipgloss.Color(sl.Color.Hex())).Background(t.Surface)
		b.WriteString(sw.Render("■ "))
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(sl.Label, labelW))))
		b.WriteString(amountStyle.Render(fmt.Sprintf(" %12s %4.0f%%", model.FormatMoney(sl.Amount), sl.Fraction*100)))
		if i < len(slices)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BarCells splits width cells across fractions using largest remainders,
// so the cells always sum to width when the fractions sum to one.
func BarCells(fracs []float64, width int) []int {
	cells := make([]int, len(fracs))
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(fracs))
	used := 0
	for i, f := range fracs {
		if f < 0 {
			f = 0
		}
		exact := f * float64(width)
		cells[i] = int(exact)
		used += cells[i]
		rems[i] = rem{idx: i, frac: exact - float64(cells[i])}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; used < width && i < len(rems); i++ {
		if rems[i].frac <= 0 {
			break
		}
		cells[rems[i].idx]++
		used++
	}
	return cells
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
