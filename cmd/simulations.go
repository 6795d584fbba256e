package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/store"
	"github.com/theirongolddev/budgetsim/internal/wire"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagSimsCategory   string
	flagSimsDifficulty string
	flagSimsRemote     bool
)

var simulationsCmd = &cobra.Command{
	Use:     "simulations",
	Aliases: []string{"sims", "ls"},
	Short:   "List available simulations",
	RunE:    runSimulations,
}

func init() {
	simulationsCmd.Flags().StringVar(&flagSimsCategory, "category", "", "Filter by category (code or slug)")
	simulationsCmd.Flags().StringVar(&flagSimsDifficulty, "difficulty", "", "Filter by difficulty (B, I, A)")
	simulationsCmd.Flags().BoolVar(&flagSimsRemote, "remote", false, "List from the server instead of the local database")
	rootCmd.AddCommand(simulationsCmd)
}

// parseFilter validates category and difficulty flags; empty values match all.
func parseFilter(category, difficulty string) (store.Filter, error) {
	var f store.Filter
	if category != "" {
		c, ok := model.ParseCategory(category)
		if !ok {
			return f, fmt.Errorf("unknown category %q", category)
		}
		f.Category = c
	}
	if difficulty != "" {
		d, ok := model.ParseDifficulty(difficulty)
		if !ok {
			return f, fmt.Errorf("unknown difficulty %q", difficulty)
		}
		f.Difficulty = d
	}
	return f, nil
}

func runSimulations(_ *cobra.Command, _ []string) error {
	f, err := parseFilter(flagSimsCategory, flagSimsDifficulty)
	if err != nil {
		return err
	}
	cfg := loadConfig()

	var (
		sums []model.SimulationSummary
		done = map[int]bool{}
	)
	if flagSimsRemote {
		sums, err = remoteSummaries(&cfg, f)
		if err != nil {
			return err
		}
	} else {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if sums, err = st.ListSimulations(f); err != nil {
			return fmt.Errorf("listing simulations: %w", err)
		}
		if player := config.GetPlayerID(cfg); player != "" {
			completions, err := st.LoadCompletions(player)
			if err != nil {
				return fmt.Errorf("loading completions: %w", err)
			}
			for _, c := range completions {
				done[c.SimulationID] = true
			}
		}
	}

	if len(sums) == 0 {
		fmt.Println("\n  No simulations found. Import a catalog with `budgetsim import <path>`.")
		return nil
	}

	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		mark := ""
		if done[s.ID] {
			mark = "done"
		}
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Category.Display(),
			s.Difficulty.Display(),
			cli.FormatMoney(s.MonthlyIncome),
			strconv.Itoa(s.ExpenseCount),
			truncateQuestion(s.Question, 48),
			mark,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s Simulations", formatNumber(int64(len(sums))))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Category", "Level", "Income", "Items", "Question", ""},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func remoteSummaries(cfg *config.Config, f store.Filter) ([]model.SimulationSummary, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	remote, err := c.ListSimulations(ctx, string(f.Category), string(f.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("listing simulations: %w", err)
	}
	out := make([]model.SimulationSummary, len(remote))
	for i, r := range remote {
		out[i] = fromWireSummary(r)
	}
	return out, nil
}

func fromWireSummary(r wire.SimulationSummary) model.SimulationSummary {
	cat, ok := model.ParseCategory(r.Category)
	if !ok {
		cat = model.Category(r.Category)
	}
	return model.SimulationSummary{
		ID:            r.ID,
		Question:      r.Question,
		Category:      cat,
		Difficulty:    model.Difficulty(r.Difficulty),
		MonthlyIncome: decimal.NewFromFloat(r.MonthlyIncome),
		ExpenseCount:  r.ExpenseCount,
	}
}

func truncateQuestion(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
