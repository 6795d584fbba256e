package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/tui"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagPlaySim        int
	flagPlayCategory   string
	flagPlayDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a budgeting simulation in the terminal",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlaySim, "sim", 0, "Simulation id (default: next unplayed)")
	playCmd.Flags().StringVar(&flagPlayCategory, "category", "", "Category for the next simulation")
	playCmd.Flags().StringVar(&flagPlayDifficulty, "difficulty", "", "Difficulty for the next simulation (B, I, A)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	needSetup := !config.Exists()

	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	c, err := newClient(&cfg)
	if err != nil {
		return err
	}

	// Log output would corrupt the alt screen.
	if err := os.MkdirAll(config.DataDir(), 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	logf, err := tea.LogToFile(filepath.Join(config.DataDir(), "play.log"), "play")
	if err != nil {
		return fmt.Errorf("open play log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	// Empty values are filled from the setup form on first run.
	category, difficulty := flagPlayCategory, flagPlayDifficulty
	if !needSetup {
		if category == "" {
			category = cfg.Game.DefaultCategory
		}
		if difficulty == "" {
			difficulty = cfg.Game.DefaultDifficulty
		}
	}

	app := tui.NewApp(c, tui.Options{
		SimulationID: flagPlaySim,
		Category:     category,
		Difficulty:   difficulty,
		BaseURL:      c.BaseURL(),
		NeedSetup:    needSetup,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
