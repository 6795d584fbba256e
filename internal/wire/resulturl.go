package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrBadResultQuery is returned when result page parameters are missing or invalid.
var ErrBadResultQuery = errors.New("invalid result parameters")

// ResultQuery is the state carried to the result page in its URL.
type ResultQuery struct {
	SimulationID  int
	Selected      []int
	TotalSelected decimal.Decimal
	MonthlyIncome decimal.Decimal
}

// Values encodes the query as simulation_id, selected (JSON),
// totalSelected and monthlyIncome.
func (q ResultQuery) Values() url.Values {
	ids := q.Selected
	if ids == nil {
		ids = []int{}
	}
	sel, _ := json.Marshal(ids)
	v := url.Values{}
	v.Set("simulation_id", strconv.Itoa(q.SimulationID))
	v.Set("selected", string(sel))
	v.Set("totalSelected", q.TotalSelected.String())
	v.Set("monthlyIncome", q.MonthlyIncome.String())
	return v
}

// URL appends the encoded query to base, e.g. "http://host/result".
func (q ResultQuery) URL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Values().Encode()
}

// ParseResultQuery decodes result page parameters.
func ParseResultQuery(v url.Values) (ResultQuery, error) {
	var q ResultQuery
	id, err := strconv.Atoi(v.Get("simulation_id"))
	if err != nil || id <= 0 {
		return q, fmt.Errorf("%w: simulation_id %q", ErrBadResultQuery, v.Get("simulation_id"))
	}
	q.SimulationID = id

	sel := v.Get("selected")
	if sel == "" {
		sel = "[]"
	}
	if err := json.Unmarshal([]byte(sel), &q.Selected); err != nil {
		return q, fmt.Errorf("%w: selected: %w", ErrBadResultQuery, err)
	}

	if q.TotalSelected, err = decimal.NewFromString(v.Get("totalSelected")); err != nil {
		return q, fmt.Errorf("%w: totalSelected: %w", ErrBadResultQuery, err)
	}
	if q.MonthlyIncome, err = decimal.NewFromString(v.Get("monthlyIncome")); err != nil {
		return q, fmt.Errorf("%w: monthlyIncome: %w", ErrBadResultQuery, err)
	}
	return q, nil
}

// ParseResultURL decodes the parameters of a full result URL.
func ParseResultURL(raw string) (ResultQuery, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ResultQuery{}, fmt.Errorf("%w: %w", ErrBadResultQuery, err)
	}
	return ParseResultQuery(u.Query())
}
