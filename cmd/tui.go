package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/ascendia/internal/config"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/store"
	"github.com/theirongolddev/ascendia/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive pet dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if _, running := daemonClient(); running {
		return errors.New("the daemon owns the pet while it runs; stop it with `ascendia daemon stop` first")
	}

	kv, err := store.Open(appCfg.Store.Backend, appCfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening pet store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	// The dashboard owns loading so it can show the spinner.
	notes := tui.NewNotifications()
	engine := pet.NewEngine(pet.Config{
		Store:  kv,
		Sink:   notes,
		UserID: appCfg.General.UserID,
	})

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	if !flagNoColor {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	app := tui.NewApp(tui.Options{
		Engine:        engine,
		Notes:         notes,
		DecayEnabled:  appCfg.Decay.Enabled,
		DecayInterval: appCfg.Decay.Interval.Duration,
		NeedSetup:     !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
