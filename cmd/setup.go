package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/ascendia/internal/config"
	"github.com/theirongolddev/ascendia/internal/daemon"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/tui"
	"github.com/theirongolddev/ascendia/internal/tui/theme"

	"github.com/charmbracelet/huh"
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
	p, err := runAction(petAction{
		local:  func(context.Context, *pet.Engine) bool { return false },
		remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) { return c.Pet(ctx) },
	})
	if err != nil {
		return err
	}

	name := p.Name
	petType := string(p.Type)
	themeName := appCfg.Appearance.Theme

	if err := tui.NewSetupForm(&name, &petType, &themeName).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	_, err = runAction(petAction{
		local: func(ctx context.Context, e *pet.Engine) bool {
			e.RenamePet(ctx, name)
			e.SetPetType(ctx, pet.Type(petType))
			return true
		},
		remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
			if _, err := c.Rename(ctx, name); err != nil {
				return daemon.PetResponse{}, err
			}
			return c.SetType(ctx, pet.Type(petType))
		},
	})
	if err != nil {
		return err
	}

	// Save the file's own values, not the env/flag overrides in appCfg.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg.Appearance.Theme = themeName
	theme.SetActive(themeName)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Say hello to %s the %s!\n", name, petType)
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `ascendia setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
