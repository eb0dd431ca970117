package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds all ascendia configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Store      StoreConfig      `toml:"store"`
	Decay      DecayConfig      `toml:"decay"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	UserID string `toml:"user_id" env:"ASCENDIA_USER_ID"`
}

// StoreConfig selects where the pet profile is persisted.
type StoreConfig struct {
	Backend string `toml:"backend" env:"ASCENDIA_STORE"`
	Path    string `toml:"path,omitempty" env:"ASCENDIA_STORE_PATH"`
}

// DecayConfig controls the background decay poll in long-running modes.
type DecayConfig struct {
	Enabled  bool     `toml:"enabled" env:"ASCENDIA_DECAY_ENABLED"`
	Interval Duration `toml:"interval" env:"ASCENDIA_DECAY_INTERVAL"`
}

// DaemonConfig holds the background daemon's settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" env:"ASCENDIA_DAEMON_ADDR"`
	EventsBuffer int    `toml:"events_buffer" env:"ASCENDIA_DAEMON_EVENTS_BUFFER"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"ASCENDIA_THEME"`
}

// Duration is a time.Duration written as "1m30s" in TOML and env vars.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			UserID: "defaultUser",
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Decay: DecayConfig{
			Enabled:  true,
			Interval: Duration{15 * time.Minute},
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ascendia")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ascendia")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// ASCENDIA_* environment variables override values from the file.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
