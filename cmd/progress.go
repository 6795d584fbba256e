package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagProgressDays     int
	flagProgressCategory string
	flagProgressRemote   bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show XP, completions and recent attempts",
	RunE:  runProgress,
}

func init() {
	progressCmd.Flags().IntVarP(&flagProgressDays, "days", "n", 14, "Activity window in days")
	progressCmd.Flags().StringVar(&flagProgressCategory, "category", "", "Limit recent attempts to one category")
	progressCmd.Flags().BoolVar(&flagProgressRemote, "remote", false, "Read progress from the server")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if flagProgressRemote {
		return runRemoteProgress(&cfg)
	}

	player := config.GetPlayerID(cfg)
	if player == "" {
		return errors.New("no player id yet; play a round or run `budgetsim setup` first")
	}
	f, err := parseFilter(flagProgressCategory, "")
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	attempts, err := st.LoadAttempts(player)
	if err != nil {
		return fmt.Errorf("loading attempts: %w", err)
	}
	completions, err := st.LoadCompletions(player)
	if err != nil {
		return fmt.Errorf("loading completions: %w", err)
	}

	stats := pipeline.Aggregate(attempts, completions)
	now := time.Now()

	fmt.Println()
	fmt.Println(cli.RenderTitle(progressTitle(cfg)))
	fmt.Println()
	printStats(stats, now)

	days := pipeline.AggregateDays(attempts, now.AddDate(0, 0, -flagProgressDays+1), now)
	if len(days) > 0 {
		values := make([]float64, len(days))
		for i, d := range days {
			values[i] = float64(d.Attempts)
		}
		fmt.Printf("  Last %d days  %s\n\n", len(days), cli.RenderSparkline(values))
	}

	printCategoryXP(pipeline.SortedCategoryXP(stats))
	printRecentAttempts(pipeline.FilterByCategory(attempts, f.Category), now)
	return nil
}

func runRemoteProgress(cfg *config.Config) error {
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := c.FetchProgress(ctx)
	if err != nil {
		return fmt.Errorf("loading progress: %w", err)
	}

	stats := model.ProgressStats{
		Attempts:     p.Attempts,
		Successes:    p.Successes,
		SuccessRate:  p.SuccessRate,
		Completions:  p.Completions,
		TotalXP:      p.TotalXP,
		XPByCategory: make(map[model.Category]int, len(p.XPByCategory)),
		ByDifficulty: make(map[model.Difficulty]int, len(p.ByDifficulty)),
	}
	for slug, xp := range p.XPByCategory {
		if cat, ok := model.ParseCategory(slug); ok {
			stats.XPByCategory[cat] += xp
		}
	}
	for d, n := range p.ByDifficulty {
		stats.ByDifficulty[model.Difficulty(d)] = n
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(progressTitle(*cfg)))
	fmt.Println()
	printStats(stats, time.Now())
	printCategoryXP(pipeline.SortedCategoryXP(stats))
	return nil
}

func progressTitle(cfg config.Config) string {
	if cfg.General.PlayerName != "" {
		return cfg.General.PlayerName + "'s Progress"
	}
	return "Progress"
}

func printStats(stats model.ProgressStats, now time.Time) {
	fmt.Printf("  Total XP:      %s\n", cli.RenderXP(stats.TotalXP))
	fmt.Printf("  Completed:     %s simulations\n", formatNumber(int64(stats.Completions)))
	fmt.Printf("  Attempts:      %s (%s successful)\n",
		formatNumber(int64(stats.Attempts)), cli.FormatPercent(stats.SuccessRate))
	if !stats.LastAttemptAt.IsZero() {
		fmt.Printf("  Last played:   %s\n", cli.FormatAgo(stats.LastAttemptAt, now))
	}
	for _, d := range []model.Difficulty{model.Beginner, model.Intermediate, model.Advanced} {
		if n := stats.ByDifficulty[d]; n > 0 {
			fmt.Printf("    %-13s %d\n", d.Display(), n)
		}
	}
	fmt.Println()
}

func printCategoryXP(rows []pipeline.CategoryXP) {
	if len(rows) == 0 || rows[0].XP == 0 {
		return
	}
	fmt.Println("  XP by category")
	maxXP := float64(rows[0].XP)
	for _, r := range rows {
		if r.XP == 0 {
			continue
		}
		fmt.Printf("%s %s\n",
			cli.RenderHorizontalBar(r.Category.Display(), float64(r.XP), maxXP, 30),
			cli.FormatXP(r.XP))
	}
	fmt.Println()
}

func printRecentAttempts(attempts []model.Attempt, now time.Time) {
	if len(attempts) == 0 {
		return
	}
	recent := make([]model.Attempt, len(attempts))
	copy(recent, attempts)
	sort.Slice(recent, func(i, j int) bool { return recent[i].SubmittedAt.After(recent[j].SubmittedAt) })
	if len(recent) > 10 {
		recent = recent[:10]
	}

	rows := make([][]string, 0, len(recent))
	for _, a := range recent {
		total, _ := decimal.NewFromString(a.TotalSelected)
		rows = append(rows, []string{
			cli.FormatAgo(a.SubmittedAt, now),
			strconv.Itoa(a.SimulationID),
			a.Category.Display(),
			a.Difficulty.Display(),
			cli.FormatMoney(total),
			cli.RenderOutcome(a.Successful),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent attempts",
		Headers: []string{"When", "Sim", "Category", "Level", "Selected", "Result"},
		Rows:    rows,
	}))
	fmt.Println()
}
