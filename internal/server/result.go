package server

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/wire"
)

// BuildResult assembles result page data from the URL state. Totals come
// from the query; selected ids are resolved against the simulation and
// unknown ids are skipped.
func BuildResult(sim *model.Simulation, q wire.ResultQuery) (wire.ResultPage, chart.Series) {
	var selected []model.Expense
	seen := make(map[int]bool, len(q.Selected))
	for _, id := range q.Selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := sim.Expense(id); ok {
			selected = append(selected, e)
		}
	}

	remaining := q.MonthlyIncome.Sub(q.TotalSelected)
	series := chart.FromSelection(selected, q.MonthlyIncome, q.TotalSelected)

	page := wire.ResultPage{
		Simulation:       wire.Info(sim),
		Selected:         wire.FromExpenses(selected),
		TotalSelected:    q.TotalSelected.InexactFloat64(),
		MonthlyIncome:    q.MonthlyIncome.InexactFloat64(),
		BudgetDifference: remaining.InexactFloat64(),
		Chart:            make([]wire.ChartSlice, series.Len()),
	}
	for i, label := range series.Labels {
		page.Chart[i] = wire.ChartSlice{
			Label:  label,
			Amount: series.Amounts[i].InexactFloat64(),
			Fill:   series.Colors[i].Fill(),
			Stroke: series.Colors[i].Stroke(),
		}
	}
	return page, series
}

func (s *Service) resolveResult(w http.ResponseWriter, r *http.Request) (wire.ResultPage, chart.Series, *model.Simulation, bool) {
	q, err := wire.ParseResultQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return wire.ResultPage{}, chart.Series{}, nil, false
	}
	sim, ok := s.loadSimulation(w, strconv.Itoa(q.SimulationID))
	if !ok {
		return wire.ResultPage{}, chart.Series{}, nil, false
	}
	page, series := BuildResult(sim, q)
	return page, series, sim, true
}

func (s *Service) handleResultJSON(w http.ResponseWriter, r *http.Request) {
	page, _, _, ok := s.resolveResult(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type resultView struct {
	Question   string
	Category   string
	Difficulty string
	Chart      template.HTML
	Legend     []legendRow
	Rows       []expenseRow
	Total      string
	Income     string
	Difference string
	Negative   bool
}

type legendRow struct {
	Label  string
	Amount string
	Style  template.CSS
}

type expenseRow struct {
	Name      string
	Amount    string
	Essential bool
}

func (s *Service) handleResultPage(w http.ResponseWriter, r *http.Request) {
	_, series, sim, ok := s.resolveResult(w, r)
	if !ok {
		return
	}
	q, _ := wire.ParseResultQuery(r.URL.Query())
	diff := q.MonthlyIncome.Sub(q.TotalSelected)

	view := resultView{
		Question:   sim.Question,
		Category:   sim.Category.Display(),
		Difficulty: sim.Difficulty.Display(),
		Chart:      template.HTML(chart.SVG(series, 320)), //nolint:gosec // chart.SVG escapes labels
		Total:      model.FormatMoney(q.TotalSelected),
		Income:     model.FormatMoney(q.MonthlyIncome),
		Difference: model.FormatMoney(diff),
		Negative:   diff.IsNegative(),
	}
	for i, label := range series.Labels {
		c := series.Colors[i]
		view.Legend = append(view.Legend, legendRow{
			Label:  label,
			Amount: model.FormatMoney(series.Amounts[i]),
			Style:  template.CSS("background: " + c.Fill() + "; border-color: " + c.Stroke()), //nolint:gosec // generated colors
		})
	}
	seen := make(map[int]bool, len(q.Selected))
	for _, id := range q.Selected {
		e, found := sim.Expense(id)
		if !found || seen[id] {
			continue
		}
		seen[id] = true
		view.Rows = append(view.Rows, expenseRow{Name: e.Name, Amount: model.FormatMoney(e.Amount), Essential: e.Essential})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultTemplate.Execute(w, view); err != nil {
		s.recordError(err)
	}
}

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Budget Results</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 880px; margin: 2rem auto; color: #222; }
.layout { display: flex; gap: 2rem; align-items: flex-start; }
.swatch { display: inline-block; width: 12px; height: 12px; margin-right: 6px; border: 1px solid; }
table { border-collapse: collapse; width: 100%; }
td, th { padding: 4px 8px; border-bottom: 1px solid #ddd; text-align: left; }
.badge { font-size: 0.8em; padding: 1px 6px; border-radius: 4px; color: #fff; }
.essential { background: #2a9d8f; } .optional { background: #8d99ae; }
.text-success { color: #2a9d8f; } .text-danger { color: #d62828; }
</style>
</head>
<body>
<h1>Budget Results</h1>
<p>{{.Question}}</p>
<p><small>{{.Category}} &middot; {{.Difficulty}}</small></p>
<div class="layout">
<div>{{.Chart}}</div>
<ul>
{{range .Legend}}<li><span class="swatch" style="{{.Style}}"></span>{{.Label}} {{.Amount}}</li>
{{end}}</ul>
</div>
<h2>Selected Expenses</h2>
<table>
<tr><th>Expense</th><th>Amount</th><th>Type</th></tr>
{{range .Rows}}<tr><td>{{.Name}}</td><td>{{.Amount}}</td><td>{{if .Essential}}<span class="badge essential">Essential</span>{{else}}<span class="badge optional">Optional</span>{{end}}</td></tr>
{{end}}</table>
<p>Total Selected: <strong>{{.Total}}</strong></p>
<p>Monthly Income: <strong>{{.Income}}</strong></p>
<p>Difference: <strong class="{{if .Negative}}text-danger{{else}}text-success{{end}}">{{.Difference}}</strong></p>
</body>
</html>
`))
