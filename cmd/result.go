package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/report"
	"github.com/theirongolddev/budgetsim/internal/submission"
	"github.com/theirongolddev/budgetsim/internal/wire"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagResultURL      string
	flagResultSim      int
	flagResultSelected string
	flagResultTotal    string
	flagResultIncome   string
	flagResultPDF      string
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Show a budget result with its allocation chart",
	Long: "Render the result page for a successful submission, given either the result URL\n" +
		"or its parameters. With --pdf the result is also exported as a PDF.",
	RunE: runResult,
}

func init() {
	resultCmd.Flags().StringVar(&flagResultURL, "url", "", "Result URL printed after a successful submission")
	resultCmd.Flags().IntVar(&flagResultSim, "sim", 0, "Simulation id")
	resultCmd.Flags().StringVar(&flagResultSelected, "selected", "", "Comma-separated selected expense ids")
	resultCmd.Flags().StringVar(&flagResultTotal, "total", "", "Total selected amount")
	resultCmd.Flags().StringVar(&flagResultIncome, "income", "", "Monthly income")
	resultCmd.Flags().StringVar(&flagResultPDF, "pdf", "", "Write the result to this PDF file")
	rootCmd.AddCommand(resultCmd)
}

func runResult(_ *cobra.Command, _ []string) error {
	q, err := resultQueryFromFlags()
	if err != nil {
		return err
	}

	cfg := loadConfig()
	c, err := newClient(&cfg)
	if err != nil {
		return err
	}

	page, err := c.FetchResult(context.Background(), q)
	if err != nil {
		return fmt.Errorf("loading result: %w", err)
	}

	printResult(*page)

	if flagResultPDF != "" {
		if err := report.WriteResultPDF(flagResultPDF, *page); err != nil {
			return err
		}
		fmt.Printf("  Saved PDF to %s\n\n", flagResultPDF)
	}
	return nil
}

func resultQueryFromFlags() (wire.ResultQuery, error) {
	if flagResultURL != "" {
		return submission.ParseResultURL(flagResultURL)
	}
	if flagResultSim <= 0 {
		return wire.ResultQuery{}, errors.New("either --url or --sim is required")
	}

	q := wire.ResultQuery{SimulationID: flagResultSim}
	for _, part := range strings.Split(flagResultSelected, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return q, fmt.Errorf("invalid expense id %q", part)
		}
		q.Selected = append(q.Selected, id)
	}

	var err error
	if q.TotalSelected, err = parseAmountFlag("total", flagResultTotal); err != nil {
		return q, err
	}
	if q.MonthlyIncome, err = parseAmountFlag("income", flagResultIncome); err != nil {
		return q, err
	}
	return q, nil
}

func parseAmountFlag(name, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, fmt.Errorf("--%s is required", name)
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(v, "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", name, v)
	}
	return d, nil
}

func printResult(page wire.ResultPage) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("Budget Result"))
	fmt.Println()
	fmt.Printf("  %s\n", page.Simulation.Question)
	fmt.Printf("  %s · %s\n\n", page.Simulation.CategoryDisplay, page.Simulation.DifficultyDisplay)

	rows := make([][]string, 0, len(page.Selected))
	for _, e := range page.Selected {
		kind := "Optional"
		if e.Essential {
			kind = "Essential"
		}
		rows = append(rows, []string{e.Name, cli.FormatMoney(decimal.NewFromFloat(e.Amount)), kind})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Selected expenses",
		Headers: []string{"Expense", "Amount", "Type"},
		Rows:    rows,
	}))
	fmt.Println()

	labels := make([]string, len(page.Chart))
	amounts := make([]decimal.Decimal, len(page.Chart))
	for i, s := range page.Chart {
		labels[i] = s.Label
		amounts[i] = decimal.NewFromFloat(s.Amount)
	}
	slices := chart.FromLabeled(labels, amounts).Slices()
	if len(slices) > 0 {
		fmt.Println("  Allocation")
		for _, s := range slices {
			fmt.Printf("  %s %-24s %12s  %s\n",
				cli.RenderSwatch(s.Color.Hex()),
				s.Label,
				cli.FormatMoney(s.Amount),
				cli.FormatPercent(s.Fraction))
		}
		fmt.Println()
	}

	fmt.Printf("  Total selected:  %s\n", cli.FormatMoney(decimal.NewFromFloat(page.TotalSelected)))
	fmt.Printf("  Monthly income:  %s\n", cli.FormatMoney(decimal.NewFromFloat(page.MonthlyIncome)))
	fmt.Printf("  Difference:      %s\n", cli.RenderDifference(decimal.NewFromFloat(page.BudgetDifference)))
	fmt.Println()
}
