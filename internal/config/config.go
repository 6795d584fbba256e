package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all budgetsim configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Server     ServerConfig     `toml:"server"`
	Game       GameConfig       `toml:"game"`
	Rewards    RewardOverrides  `toml:"rewards"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath     string `toml:"db_path,omitempty"`
	PlayerID   string `toml:"player_id,omitempty"`
	PlayerName string `toml:"player_name,omitempty"`
}

// ServerConfig holds both the serve-side and the client-side server settings.
type ServerConfig struct {
	Addr              string `toml:"addr"`
	BaseURL           string `toml:"base_url"`
	RequestTimeoutSec int    `toml:"request_timeout_sec"`
	EventsBuffer      int    `toml:"events_buffer"`
}

// GameConfig holds defaults for picking the next simulation.
type GameConfig struct {
	DefaultCategory   string `toml:"default_category"`
	DefaultDifficulty string `toml:"default_difficulty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:8787",
			BaseURL:           "http://127.0.0.1:8787",
			RequestTimeoutSec: 15,
			EventsBuffer:      200,
		},
		Game: GameConfig{
			DefaultCategory:   "budget",
			DefaultDifficulty: "B",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetsim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetsim")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetsim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "budgetsim")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetServerURL returns the server base URL from env var or config, in that order.
func GetServerURL(cfg Config) string {
	if u := os.Getenv("BUDGETSIM_SERVER"); u != "" {
		return u
	}
	return cfg.Server.BaseURL
}

// GetPlayerID returns the player id from env var or config, in that order.
func GetPlayerID(cfg Config) string {
	if id := os.Getenv("BUDGETSIM_PLAYER"); id != "" {
		return id
	}
	return cfg.General.PlayerID
}

// GetDBPath returns the database path from env var, config, or the data dir default.
func GetDBPath(cfg Config) string {
	if p := os.Getenv("BUDGETSIM_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "budgetsim.db")
}
