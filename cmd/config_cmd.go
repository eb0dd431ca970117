// Package cmd implements the ascendia CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ascendia/internal/config"
	"github.com/theirongolddev/ascendia/internal/store"
	"github.com/theirongolddev/ascendia/internal/tui/theme"

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
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    User ID: %s\n", cfg.General.UserID)
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Backend: %s\n", cfg.Store.Backend)
	path := cfg.Store.Path
	if path == "" {
		path = store.DefaultPath(cfg.Store.Backend)
	}
	if cfg.Store.Backend != store.BackendMemory {
		fmt.Printf("    Path:    %s\n", path)
	}
	fmt.Println()

	fmt.Println("  [Decay]")
	fmt.Printf("    Enabled:  %v\n", cfg.Decay.Enabled)
	fmt.Printf("    Interval: %s\n", cfg.Decay.Interval.Duration)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Available: %s\n", strings.Join(theme.Names(), ", "))
	fmt.Println()

	fmt.Println("  Run `ascendia setup` to reconfigure.")
	return nil
}
