package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()
	playerID := ensurePlayerID(&cfg)

	fmt.Println()
	fmt.Println("  Welcome to budgetsim!")
	fmt.Printf("  Player id: %s\n", maskPlayerID(playerID))
	fmt.Println()

	// 1. Name
	fmt.Println("  1. Player name")
	if cfg.General.PlayerName != "" {
		fmt.Printf("     Current: %s\n", cfg.General.PlayerName)
	}
	fmt.Print("     > ")
	name, _ := reader.ReadString('\n')
	if name = strings.TrimSpace(name); name != "" {
		cfg.General.PlayerName = name
	}
	fmt.Println()

	// 2. Server
	fmt.Println("  2. Server URL")
	fmt.Printf("     Current: %s\n", cfg.Server.BaseURL)
	fmt.Print("     > ")
	serverURL, _ := reader.ReadString('\n')
	if serverURL = strings.TrimSpace(serverURL); serverURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(serverURL, "/")
	}
	fmt.Println()

	// 3. Category
	fmt.Println("  3. Favourite topic")
	cats := model.Categories()
	for i, c := range cats {
		marker := ""
		if cur, ok := model.ParseCategory(cfg.Game.DefaultCategory); ok && cur == c {
			marker = " [current]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, c.Display(), marker)
	}
	if i, ok := readChoice(reader, len(cats)); ok {
		cfg.Game.DefaultCategory = cats[i].Slug()
	}
	fmt.Println()

	// 4. Difficulty
	fmt.Println("  4. Starting difficulty")
	diffs := []model.Difficulty{model.Beginner, model.Intermediate, model.Advanced}
	for i, d := range diffs {
		fmt.Printf("     (%d) %s\n", i+1, d.Display())
	}
	if i, ok := readChoice(reader, len(diffs)); ok {
		cfg.Game.DefaultDifficulty = string(diffs[i])
	}
	fmt.Println()

	// 5. Theme
	fmt.Println("  5. Color theme")
	names := theme.Names()
	for i, n := range names {
		marker := ""
		if n == cfg.Appearance.Theme {
			marker = " [current]"
		}
		fmt.Printf("     (%d) %s%s\n", i+1, n, marker)
	}
	if i, ok := readChoice(reader, len(names)); ok {
		cfg.Appearance.Theme = names[i]
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `budgetsim setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// readChoice reads a 1-based menu choice. An empty or invalid answer keeps
// the current value.
func readChoice(reader *bufio.Reader, n int) (int, bool) {
	fmt.Print("     > ")
	line, _ := reader.ReadString('\n')
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > n {
		return 0, false
	}
	return choice - 1, true
}
