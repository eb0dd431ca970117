package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/ascendia/internal/cli"
	"github.com/theirongolddev/ascendia/internal/daemon"
	"github.com/theirongolddev/ascendia/internal/pet"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your pet",
	RunE:  runStatus,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show how financial events affect your pet",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Print(cli.RenderRules())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	return showPet(runAction(petAction{
		local:  func(context.Context, *pet.Engine) bool { return false },
		remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) { return c.Pet(ctx) },
	}))
}
