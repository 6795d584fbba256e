package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/budgetsim/internal/cli"
	"github.com/theirongolddev/budgetsim/internal/client"
	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagServer string
	flagPlayer string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "budgetsim",
	Short: "Budgeting simulation game",
	Long:  "Pick the expenses that fit a monthly income, get graded, and track your progress.",
	RunE:  runPlay,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Server base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Player id (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

var errNoServer = errors.New("no server configured (use --server or `budgetsim setup`)")

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Config unreadable, using defaults: %v\n", err)
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagServer != "" {
		cfg.Server.BaseURL = flagServer
	}
	if flagPlayer != "" {
		cfg.General.PlayerID = flagPlayer
	}
	return cfg
}

// ensurePlayerID returns the configured player id, generating and saving
// one on first use.
func ensurePlayerID(cfg *config.Config) string {
	if id := config.GetPlayerID(*cfg); id != "" {
		return id
	}
	cfg.General.PlayerID = uuid.NewString()
	if err := config.Save(*cfg); err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Could not save player id: %v\n", err)
	}
	return cfg.General.PlayerID
}

func newClient(cfg *config.Config) (*client.Client, error) {
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	c := client.New(config.GetServerURL(*cfg), ensurePlayerID(cfg), timeout)
	if c == nil {
		return nil, errNoServer
	}
	return c, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(config.GetDBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
