// Package report renders simulation results as printable PDF documents.
package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/wire"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	pieRadius = 38.0
	arcStep   = math.Pi / 90 // 2 degrees
)

type resultReport struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	page   wire.ResultPage
	series chart.Series
}

// ResultPDF renders a result page: question, allocation pie with legend,
// the selected expenses and the budget summary.
func ResultPDF(page wire.ResultPage, generated time.Time) ([]byte, error) {
	labels := make([]string, len(page.Chart))
	amounts := make([]decimal.Decimal, len(page.Chart))
	for i, s := range page.Chart {
		labels[i] = s.Label
		amounts[i] = decimal.NewFromFloat(s.Amount)
	}

	r := &resultReport{
		pdf:    fpdf.New("P", "mm", "A4", ""),
		page:   page,
		series: chart.FromLabeled(labels, amounts),
	}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Budget result", true)
	r.pdf.SetCreator("budgetsim", true)
	r.pdf.SetCreationDate(generated)

	r.pdf.AddPage()
	r.addHeader(generated)
	r.addChart()
	r.addExpenses()
	r.addSummary()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteResultPDF renders the result page to path.
func WriteResultPDF(path string, page wire.ResultPage) error {
	data, err := ResultPDF(page, time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (r *resultReport) addHeader(generated time.Time) {
	p := r.pdf
	p.SetFont("Arial", "B", 20)
	p.SetTextColor(0, 51, 102)
	p.CellFormat(contentWidth, 12, "Budget Result", "", 1, "L", false, 0, "")

	info := r.page.Simulation
	p.SetFont("Arial", "", 10)
	p.SetTextColor(100, 100, 100)
	meta := fmt.Sprintf("Simulation #%d", info.ID)
	if info.CategoryDisplay != "" {
		meta += " | " + info.CategoryDisplay
	}
	if info.DifficultyDisplay != "" {
		meta += " | " + info.DifficultyDisplay
	}
	p.CellFormat(contentWidth, 6, r.tr(meta), "", 1, "L", false, 0, "")

	if info.Question != "" {
		p.Ln(2)
		p.SetFont("Arial", "", 12)
		p.SetTextColor(40, 40, 40)
		p.MultiCell(contentWidth, 6, r.tr(info.Question), "", "L", false)
	}

	p.SetFont("Arial", "I", 9)
	p.SetTextColor(120, 120, 120)
	p.CellFormat(contentWidth, 6, "Generated "+generated.Format("2 January 2006"), "", 1, "L", false, 0, "")
	p.Ln(4)
}

// addChart draws the pie on the left and its legend on the right.
func (r *resultReport) addChart() {
	p := r.pdf
	top := p.GetY()
	cx := marginLeft + pieRadius
	cy := top + pieRadius

	slices := r.series.Slices()
	if len(slices) == 0 {
		p.SetFont("Arial", "I", 10)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(contentWidth, 8, "Nothing to chart.", "", 1, "L", false, 0, "")
		return
	}

	p.SetLineWidth(0.3)
	for _, s := range slices {
		if s.Fraction <= 0 {
			continue
		}
		p.SetFillColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
		p.SetDrawColor(255, 255, 255)
		if s.Fraction >= 0.9999 {
			p.Circle(cx, cy, pieRadius, "FD")
			continue
		}
		p.Polygon(wedge(cx, cy, pieRadius, s.Start, s.End), "FD")
	}

	// Legend.
	lx := marginLeft + 2*pieRadius + 12
	ly := top + 2
	p.SetFont("Arial", "", 10)
	for _, s := range slices {
		p.SetFillColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
		p.Rect(lx, ly+1, 4, 4, "F")
		p.SetXY(lx+6, ly)
		p.SetTextColor(50, 50, 50)
		p.CellFormat(50, 6, r.tr(s.Label), "", 0, "L", false, 0, "")
		p.CellFormat(25, 6, model.FormatMoney(s.Amount), "", 0, "R", false, 0, "")
		p.CellFormat(15, 6, fmt.Sprintf("%.0f%%", s.Fraction*100), "", 0, "R", false, 0, "")
		ly += 7
	}

	bottom := math.Max(top+2*pieRadius, ly)
	p.SetXY(marginLeft, bottom+8)
}

func (r *resultReport) addExpenses() {
	p := r.pdf
	p.SetFont("Arial", "B", 12)
	p.SetTextColor(0, 51, 102)
	p.CellFormat(contentWidth, 8, "Selected Expenses", "", 1, "L", false, 0, "")

	widths := []float64{contentWidth - 70, 35, 35}
	p.SetFont("Arial", "B", 10)
	p.SetFillColor(245, 247, 250)
	p.SetDrawColor(200, 200, 200)
	p.SetTextColor(50, 50, 50)
	for i, h := range []string{"Expense", "Amount", "Type"} {
		align := "L"
		if i == 1 {
			align = "R"
		}
		p.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	p.Ln(-1)

	p.SetFont("Arial", "", 10)
	if len(r.page.Selected) == 0 {
		p.CellFormat(contentWidth, 7, "No expenses selected.", "1", 1, "C", false, 0, "")
		return
	}
	for _, e := range r.page.Selected {
		kind := "Optional"
		if e.Essential {
			kind = "Essential"
		}
		p.CellFormat(widths[0], 7, r.tr(e.Name), "1", 0, "L", false, 0, "")
		p.CellFormat(widths[1], 7, model.FormatMoney(decimal.NewFromFloat(e.Amount)), "1", 0, "R", false, 0, "")
		p.CellFormat(widths[2], 7, kind, "1", 0, "L", false, 0, "")
		p.Ln(-1)
	}
}

func (r *resultReport) addSummary() {
	p := r.pdf
	p.Ln(6)
	p.SetFont("Arial", "B", 12)
	p.SetTextColor(0, 51, 102)
	p.CellFormat(contentWidth, 8, "Summary", "", 1, "L", false, 0, "")

	total := decimal.NewFromFloat(r.page.TotalSelected)
	income := decimal.NewFromFloat(r.page.MonthlyIncome)
	diff := decimal.NewFromFloat(r.page.BudgetDifference)

	row := func(label, value string) {
		p.SetFont("Arial", "", 10)
		p.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
		p.CellFormat(40, 7, value, "", 1, "R", false, 0, "")
	}
	p.SetTextColor(50, 50, 50)
	row("Total selected", model.FormatMoney(total))
	row("Monthly income", model.FormatMoney(income))

	if diff.IsNegative() {
		p.SetTextColor(192, 57, 43)
		row("Over budget by", model.FormatMoney(diff.Abs()))
	} else {
		p.SetTextColor(39, 174, 96)
		row("Left over", model.FormatMoney(diff))
	}
}

// wedge approximates a pie slice between angles a0 and a1 (radians,
// clockwise from 12 o'clock) as a polygon.
func wedge(cx, cy, radius, a0, a1 float64) []fpdf.PointType {
	pts := []fpdf.PointType{{X: cx, Y: cy}}
	for a := a0; a < a1; a += arcStep {
		pts = append(pts, arcPoint(cx, cy, radius, a))
	}
	return append(pts, arcPoint(cx, cy, radius, a1))
}

func arcPoint(cx, cy, radius, a float64) fpdf.PointType {
	return fpdf.PointType{X: cx + radius*math.Sin(a), Y: cy - radius*math.Cos(a)}
}
