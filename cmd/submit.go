package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/theirongolddev/budgetsim/internal/budget"
	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/submission"

	"github.com/spf13/cobra"
)

var flagSubmitSolution bool

var submitCmd = &cobra.Command{
	Use:   "submit <simulation-id> [expense-id...]",
	Short: "Submit a selection without the interactive view",
	Long:  "Submit the given expense ids, in order, as the budget for a simulation and print the grade.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().BoolVar(&flagSubmitSolution, "solution", false, "Show the solution when the budget is rejected")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(_ *cobra.Command, args []string) error {
	simID, err := strconv.Atoi(args[0])
	if err != nil || simID <= 0 {
		return fmt.Errorf("invalid simulation id %q", args[0])
	}
	ids := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		id, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid expense id %q", a)
		}
		ids = append(ids, id)
	}

	cfg := loadConfig()
	c, err := newClient(&cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sim, err := c.FetchSimulation(ctx, simID)
	if err != nil {
		return fmt.Errorf("loading simulation %d: %w", simID, err)
	}
	tracker, err := budget.NewTracker(sim.MonthlyIncome, sim.Expenses, ids)
	if err != nil {
		return err
	}
	snap := tracker.Recompute()

	fmt.Println()
	fmt.Printf("  %s\n", sim.Question)
	fmt.Printf("  Income %s  Selected %s  Remaining %s\n",
		cli.FormatMoney(snap.MonthlyIncome),
		cli.FormatMoney(snap.TotalExpenses),
		cli.RenderMoney(snap.RemainingBudget))
	fmt.Println()

	h := submission.NewHandler(c.BaseURL())
	out, err := h.Submit(ctx, c, sim.ID, snap.Payload())
	if out.Alert != "" {
		fmt.Printf("  %s\n\n", cli.RenderOutcome(false))
		return fmt.Errorf("%s: %w", out.Alert, err)
	}
	if err != nil {
		return err
	}

	if out.RedirectURL != "" {
		fmt.Printf("  %s  Your budget works.\n", cli.RenderOutcome(true))
		fmt.Printf("  Result: %s\n\n", out.RedirectURL)
		return nil
	}

	printFeedback(out.Feedback)
	if !flagSubmitSolution || !out.Feedback.SolutionAvailable {
		return nil
	}
	sol, err := h.ShowSolution(tracker.IDs(budget.Available))
	if err != nil {
		return err
	}
	printSolution(sol)
	return nil
}

func printFeedback(fb *submission.Feedback) {
	fmt.Printf("  %s  %s\n", cli.RenderOutcome(false), fb.Header)
	if fb.Message != "" {
		fmt.Printf("  %s\n", fb.Message)
	}
	for _, d := range fb.Details {
		fmt.Printf("    - %s\n", d)
	}
	fmt.Println()
	fmt.Printf("  Total selected:  %s\n", cli.FormatMoney(fb.Summary.TotalSelected))
	fmt.Printf("  Monthly income:  %s\n", cli.FormatMoney(fb.Summary.MonthlyIncome))
	fmt.Printf("  Difference:      %s\n", cli.RenderDifference(fb.Summary.Difference))
	fmt.Println()
}

func printSolution(sol submission.Solution) {
	if len(sol.Missing) > 0 {
		rows := make([][]string, 0, len(sol.Missing))
		for _, m := range sol.Missing {
			where := "not listed"
			if m.Highlight {
				where = "still available"
			}
			rows = append(rows, []string{m.Name, cli.FormatMoney(m.Amount), where})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Missing essentials",
			Headers: []string{"Expense", "Amount", ""},
			Rows:    rows,
		}))
		fmt.Println()
	}

	rows := make([][]string, 0, len(sol.Selected))
	for _, r := range sol.Selected {
		rows = append(rows, []string{r.Name, cli.FormatMoney(r.Amount), r.Badge(), r.Feedback})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Your selection",
		Headers: []string{"Expense", "Amount", "Type", "Note"},
		Rows:    rows,
	}))
	fmt.Println()
}
