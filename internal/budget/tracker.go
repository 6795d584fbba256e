// Package budget tracks which expenses a player has placed in their budget
// and derives the totals shown while they play.
package budget

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownItem is returned when an id does not belong to the tracker.
	ErrUnknownItem = errors.New("unknown expense item")
	// ErrDuplicateItem is returned when two items share an id.
	ErrDuplicateItem = errors.New("duplicate expense item")
)

// Region is one of the two lists an item can live in.
type Region int

const (
	// Available items are not part of the budget.
	Available Region = iota
	// Selected items count toward the budget.
	Selected
)

func (r Region) String() string {
	if r == Selected {
		return "selected"
	}
	return "available"
}

// Other returns the opposite region.
func (r Region) Other() Region {
	if r == Selected {
		return Available
	}
	return Selected
}

// Tracker holds the selection set. Every item is in exactly one region and
// each region keeps its visual order.
type Tracker struct {
	income    decimal.Decimal
	items     map[int]model.Expense
	region    map[int]Region
	available []int
	selected  []int
}

// NewTracker partitions items into regions. Ids listed in selectedIDs start
// selected in that order; the rest start available in the order given.
func NewTracker(income decimal.Decimal, items []model.Expense, selectedIDs []int) (*Tracker, error) {
	t := &Tracker{
		income: income,
		items:  make(map[int]model.Expense, len(items)),
		region: make(map[int]Region, len(items)),
	}
	for _, it := range items {
		if _, dup := t.items[it.ID]; dup {
			return nil, fmt.Errorf("item %d: %w", it.ID, ErrDuplicateItem)
		}
		t.items[it.ID] = it
	}

	for _, id := range selectedIDs {
		if _, ok := t.items[id]; !ok {
			return nil, fmt.Errorf("selected item %d: %w", id, ErrUnknownItem)
		}
		if _, seen := t.region[id]; seen {
			return nil, fmt.Errorf("selected item %d: %w", id, ErrDuplicateItem)
		}
		t.region[id] = Selected
		t.selected = append(t.selected, id)
	}
	for _, it := range items {
		if _, placed := t.region[it.ID]; placed {
			continue
		}
		t.region[it.ID] = Available
		t.available = append(t.available, it.ID)
	}
	return t, nil
}

// Income returns the monthly income the budget is measured against.
func (t *Tracker) Income() decimal.Decimal { return t.income }

// Item returns the expense with the given id.
func (t *Tracker) Item(id int) (model.Expense, bool) {
	it, ok := t.items[id]
	return it, ok
}

// RegionOf reports which region holds id.
func (t *Tracker) RegionOf(id int) (Region, bool) {
	r, ok := t.region[id]
	return r, ok
}

// IDs returns a copy of the ordered ids in a region.
func (t *Tracker) IDs(r Region) []int {
	src := t.available
	if r == Selected {
		src = t.selected
	}
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// Items returns the ordered expenses in a region.
func (t *Tracker) Items(r Region) []model.Expense {
	ids := t.IDs(r)
	out := make([]model.Expense, len(ids))
	for i, id := range ids {
		out[i] = t.items[id]
	}
	return out
}

// Len returns the number of items in a region.
func (t *Tracker) Len(r Region) int {
	if r == Selected {
		return len(t.selected)
	}
	return len(t.available)
}

// Toggle moves an item to the end of the other region and returns the
// region it landed in.
func (t *Tracker) Toggle(id int) (Region, error) {
	cur, ok := t.region[id]
	if !ok {
		return 0, fmt.Errorf("toggle %d: %w", id, ErrUnknownItem)
	}
	dst := cur.Other()
	if err := t.Move(id, dst, t.Len(dst)); err != nil {
		return 0, err
	}
	return dst, nil
}

// Move places an item at index within region dst. The index is clamped to
// the valid range, so moving within the same region reorders it.
func (t *Tracker) Move(id int, dst Region, index int) error {
	cur, ok := t.region[id]
	if !ok {
		return fmt.Errorf("move %d: %w", id, ErrUnknownItem)
	}

	src := t.list(cur)
	*src = removeID(*src, id)

	dl := t.list(dst)
	if index < 0 {
		index = 0
	}
	if index > len(*dl) {
		index = len(*dl)
	}
	*dl = append(*dl, 0)
	copy((*dl)[index+1:], (*dl)[index:])
	(*dl)[index] = id

	t.region[id] = dst
	return nil
}

// Shift moves an item up (negative delta) or down within its own region.
func (t *Tracker) Shift(id, delta int) error {
	r, ok := t.region[id]
	if !ok {
		return fmt.Errorf("shift %d: %w", id, ErrUnknownItem)
	}
	pos := indexOf(*t.list(r), id)
	return t.Move(id, r, pos+delta)
}

// Recompute derives a fresh snapshot from the current selection set.
func (t *Tracker) Recompute() Snapshot {
	selected := t.Items(Selected)
	total := Total(selected)

	ids := make([]int, len(t.selected))
	copy(ids, t.selected)

	return Snapshot{
		MonthlyIncome:   t.income,
		TotalExpenses:   total,
		RemainingBudget: t.income.Sub(total),
		Breakdown:       Allocate(selected),
		SelectedIDs:     ids,
	}
}

// Total sums the amounts of items.
func Total(items []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// Allocate groups items by name in first-seen order. Items sharing a name
// are summed into one allocation.
func Allocate(items []model.Expense) []Allocation {
	out := make([]Allocation, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.Name]; ok {
			out[i].Amount = out[i].Amount.Add(it.Amount)
			continue
		}
		pos[it.Name] = len(out)
		out = append(out, Allocation{Label: it.Name, Amount: it.Amount})
	}
	return out
}

func (t *Tracker) list(r Region) *[]int {
	if r == Selected {
		return &t.selected
	}
	return &t.available
}

func removeID(ids []int, id int) []int {
	i := indexOf(ids, id)
	if i < 0 {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
