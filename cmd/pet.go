package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/ascendia/internal/daemon"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	feedCost    int
	trainAmount int
	trainSilent bool
	treatReason string
	resetYes    bool
	eventData   pet.EventData
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Spend treats to feed your pet",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool { return e.FeedPet(ctx, feedCost) },
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.Feed(ctx, feedCost)
			},
		}))
	},
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play with your pet (costs energy)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return showPet(runAction(petAction{
			local:  func(ctx context.Context, e *pet.Engine) bool { return e.Play(ctx) },
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) { return c.Play(ctx) },
		}))
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train your pet for experience",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if trainAmount <= 0 {
			return errors.New("--amount must be positive")
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.GainXP(ctx, trainAmount, trainSilent)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.GainXP(ctx, trainAmount, trainSilent)
			},
		}))
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <hunger|happiness|energy> <delta>",
	Short: "Adjust one of your pet's stats",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		stat := pet.Stat(strings.ToLower(args[0]))
		if !stat.IsValid() {
			return fmt.Errorf("unknown stat %q (want hunger, happiness or energy)", args[0])
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q: %w", args[1], err)
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.UpdateStat(ctx, stat, delta)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.UpdateStat(ctx, stat, delta)
			},
		}))
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename your pet",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return errors.New("name must not be blank")
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.RenamePet(ctx, name)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.Rename(ctx, name)
			},
		}))
	},
}

var typeCmd = &cobra.Command{
	Use:       "type <Cat|Dragon>",
	Short:     "Change your pet's species",
	Args:      cobra.ExactArgs(1),
	ValidArgs: petTypeNames(),
	RunE: func(_ *cobra.Command, args []string) error {
		t, ok := parsePetType(args[0])
		if !ok {
			return fmt.Errorf("unknown pet type %q (want %s)", args[0], strings.Join(petTypeNames(), " or "))
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.SetPetType(ctx, t)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.SetType(ctx, t)
			},
		}))
	},
}

var treatsCmd = &cobra.Command{
	Use:   "treats <amount>",
	Short: "Grant (or remove) treats",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.RewardTreats(ctx, amount, treatReason)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.RewardTreats(ctx, amount, treatReason)
			},
		}))
	},
}

var eventCmd = &cobra.Command{
	Use:   "event <name>",
	Short: "Record a financial event (see `ascendia rules`)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ev, ok := pet.ParseEvent(args[0])
		if !ok {
			names := make([]string, 0, len(pet.Events))
			for _, e := range pet.Events {
				names = append(names, string(e))
			}
			return fmt.Errorf("unknown event %q (want one of %s)", args[0], strings.Join(names, ", "))
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				return e.ProcessFinancialEvent(ctx, ev, eventData)
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) {
				return c.Event(ctx, ev, eventData)
			},
			declined: "No change: this debt was already penalized today.",
		}))
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace your pet with a new hatchling",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if !resetYes {
			confirmed := false
			err := huh.NewConfirm().
				Title("Reset your pet?").
				Description("XP, treats and stats start over.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return fmt.Errorf("confirm: %w", err)
			}
			if !confirmed {
				fmt.Println("  Reset cancelled.")
				return nil
			}
		}
		return showPet(runAction(petAction{
			local: func(ctx context.Context, e *pet.Engine) bool {
				e.Reset(ctx)
				return true
			},
			remote: func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error) { return c.Reset(ctx) },
		}))
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedCost, "cost", 1, "Treats to spend")
	trainCmd.Flags().IntVar(&trainAmount, "amount", tui.TrainXP, "XP to gain")
	trainCmd.Flags().BoolVar(&trainSilent, "silent", false, "Skip the XP notification")
	treatsCmd.Flags().StringVar(&treatReason, "reason", "", "Reason shown in the notification")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")

	eventCmd.Flags().StringVar(&eventData.DebtID, "debt-id", "", "Debt identifier (debtOverdue)")
	eventCmd.Flags().StringVar(&eventData.DebtName, "debt-name", "", "Debt display name")
	eventCmd.Flags().Float64Var(&eventData.Amount, "amount", 0, "Amount involved")
	eventCmd.Flags().StringVar(&eventData.Category, "category", "", "Spending category")

	rootCmd.AddCommand(feedCmd, playCmd, trainCmd, statCmd, renameCmd, typeCmd, treatsCmd, eventCmd, resetCmd)
}

func petTypeNames() []string {
	names := make([]string, 0, len(pet.Types))
	for _, t := range pet.Types {
		names = append(names, string(t))
	}
	return names
}

func parsePetType(s string) (pet.Type, bool) {
	for _, t := range pet.Types {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}
