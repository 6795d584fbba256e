// Package cmd implements the budgetsim CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/budgetsim/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if id := config.GetPlayerID(cfg); id != "" {
		fmt.Printf("    Player id:   %s\n", maskPlayerID(id))
	} else {
		fmt.Println("    Player id:   not assigned yet")
	}
	if cfg.General.PlayerName != "" {
		fmt.Printf("    Player name: %s\n", cfg.General.PlayerName)
	}
	fmt.Printf("    Database:    %s\n", config.GetDBPath(cfg))
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Listen address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Base URL:        %s\n", config.GetServerURL(cfg))
	fmt.Printf("    Request timeout: %ds\n", cfg.Server.RequestTimeoutSec)
	fmt.Printf("    Events buffer:   %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Game]")
	fmt.Printf("    Default category:   %s\n", cfg.Game.DefaultCategory)
	fmt.Printf("    Default difficulty: %s\n", cfg.Game.DefaultDifficulty)
	fmt.Println()

	fmt.Println("  [Rewards]")
	rewards := config.NewRewards(cfg.Rewards)
	codes := make([]string, 0, len(config.DefaultRewards))
	for code := range config.DefaultRewards {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return config.DefaultRewards[codes[i]] < config.DefaultRewards[codes[j]]
	})
	for _, code := range codes {
		fmt.Printf("    %s: %d XP\n", code, rewards.XPFor(code))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `budgetsim setup` to reconfigure.")
	return nil
}

func maskPlayerID(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}
