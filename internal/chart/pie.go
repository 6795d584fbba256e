package chart

import (
	"math"

	"github.com/theirongolddev/budgetsim/internal/budget"
	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

// RemainingLabel is the label of the unspent-income slice.
const RemainingLabel = "Remaining"

// Series is the full input to one chart redraw.
type Series struct {
	Labels       []string
	Amounts      []decimal.Decimal
	Colors       []RGB
	HasRemaining bool
}

// Slice is one wedge of a pie, angles in radians clockwise from 12 o'clock.
type Slice struct {
	Label    string
	Amount   decimal.Decimal
	Color    RGB
	Fraction float64
	Start    float64
	End      float64
}

// Build creates a series from allocations, appending a Remaining slice
// only when remaining is strictly positive.
func Build(allocs []budget.Allocation, remaining decimal.Decimal) Series {
	s := Series{
		Labels:  make([]string, 0, len(allocs)+1),
		Amounts: make([]decimal.Decimal, 0, len(allocs)+1),
	}
	for _, a := range allocs {
		s.Labels = append(s.Labels, a.Label)
		s.Amounts = append(s.Amounts, a.Amount)
	}
	if remaining.IsPositive() {
		s.Labels = append(s.Labels, RemainingLabel)
		s.Amounts = append(s.Amounts, remaining)
		s.HasRemaining = true
	}
	s.Colors = GenerateColors(len(s.Labels), s.HasRemaining)
	return s
}

// FromSnapshot projects a live budget snapshot.
func FromSnapshot(snap budget.Snapshot) Series {
	return Build(snap.Breakdown, snap.RemainingBudget)
}

// FromLabeled rebuilds a series from labels and amounts that were already
// laid out, e.g. decoded from a result page. A trailing Remaining label
// keeps its fixed color.
func FromLabeled(labels []string, amounts []decimal.Decimal) Series {
	s := Series{Labels: labels, Amounts: amounts}
	if n := len(labels); n > 0 && labels[n-1] == RemainingLabel {
		s.HasRemaining = true
	}
	s.Colors = GenerateColors(len(labels), s.HasRemaining)
	return s
}

// FromSelection projects a historical selection: one slice per chosen item
// in selection order, even when names repeat, with income minus
// totalSelected as the remaining amount.
func FromSelection(items []model.Expense, income, totalSelected decimal.Decimal) Series {
	allocs := make([]budget.Allocation, len(items))
	for i, it := range items {
		allocs[i] = budget.Allocation{Label: it.Name, Amount: it.Amount}
	}
	return Build(allocs, income.Sub(totalSelected))
}

// Len returns the number of slices in the series.
func (s Series) Len() int { return len(s.Labels) }

// Total sums every amount in the series.
func (s Series) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Amounts {
		total = total.Add(a)
	}
	return total
}

// Slices lays the series out around a circle. A series whose total is not
// positive has no slices. Zero and negative amounts produce empty wedges.
func (s Series) Slices() []Slice {
	total := s.Total()
	if !total.IsPositive() {
		return nil
	}
	tf := total.InexactFloat64()

	out := make([]Slice, len(s.Labels))
	angle := 0.0
	for i, label := range s.Labels {
		v := s.Amounts[i].InexactFloat64()
		if v < 0 {
			v = 0
		}
		frac := v / tf
		out[i] = Slice{
			Label:    label,
			Amount:   s.Amounts[i],
			Color:    s.Colors[i],
			Fraction: frac,
			Start:    angle,
			End:      angle + frac*2*math.Pi,
		}
		angle = out[i].End
	}
	return out
}
