package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/theirongolddev/ascendia/internal/cli"
	"github.com/theirongolddev/ascendia/internal/config"
	"github.com/theirongolddev/ascendia/internal/daemon"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/store"
	"github.com/theirongolddev/ascendia/internal/tui/theme"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagStore     string
	flagStorePath string
	flagUser      string
	flagQuiet     bool
	flagNoColor   bool
	flagNoDaemon  bool
)

// appCfg is the loaded configuration with command-line overrides applied.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "ascendia",
	Short:             "Financial companion pet",
	Long:              "Raise a virtual pet that grows as you set and reach your financial goals.",
	PersistentPreRunE: loadSettings,
	RunE:              runStatus,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Storage backend: sqlite, bolt or memory")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store-path", "", "Storage file path (default under the XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User ID recorded on a new pet")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress notifications")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoDaemon, "no-daemon", false, "Use the store directly even when a daemon is running")
}

// loadSettings reads .env, the config file and ASCENDIA_* variables, then
// applies flags on top.
func loadSettings(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagStore != "" {
		cfg.Store.Backend = flagStore
	}
	if flagStorePath != "" {
		cfg.Store.Path = flagStorePath
	}
	if flagUser != "" {
		cfg.General.UserID = flagUser
	}
	appCfg = cfg

	theme.SetActive(cfg.Appearance.Theme)
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		cli.DisableColor()
	}
	return nil
}

// toastSink prints notifications to stderr as they happen.
var toastSink = pet.SinkFunc(func(n pet.Notification) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderToast(n))
})

// openEngine opens the configured store and returns a loaded engine. Init
// charges any decay owed since the last run. The caller closes the store.
func openEngine(ctx context.Context, sink pet.Sink) (*pet.Engine, store.KV, error) {
	kv, err := store.Open(appCfg.Store.Backend, appCfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening pet store: %w", err)
	}

	engine := pet.NewEngine(pet.Config{
		Store:  kv,
		Sink:   sink,
		UserID: appCfg.General.UserID,
	})
	switch engine.Init(ctx) {
	case pet.LoadUnavailable:
		_ = kv.Close()
		return nil, nil, errors.New("pet store could not be read; try again shortly")
	case pet.LoadDefaulted:
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Saved pet could not be read; starting a new one\n")
		}
	}
	return engine, kv, nil
}

// petAction is one change to the pet. It runs through a live daemon when
// there is one and against the store directly otherwise.
type petAction struct {
	local  func(ctx context.Context, e *pet.Engine) bool
	remote func(ctx context.Context, c *daemon.Client) (daemon.PetResponse, error)

	// declined is printed when the action reports that nothing changed.
	declined string
}

// runAction applies a and returns the resulting profile.
func runAction(a petAction) (pet.Profile, error) {
	ctx := context.Background()
	if c, ok := daemonClient(); ok {
		return runRemote(ctx, c, a)
	}

	engine, kv, err := openEngine(ctx, toastSink)
	if err != nil {
		return pet.Profile{}, err
	}
	defer func() { _ = kv.Close() }()

	if !a.local(ctx, engine) && a.declined != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %s\n", a.declined)
	}
	p, _ := engine.Profile()
	return p, nil
}

// runRemote applies a through the daemon and prints the notifications it
// produced.
func runRemote(ctx context.Context, c *daemon.Client, a petAction) (pet.Profile, error) {
	st, err := c.Status(ctx)
	if err != nil {
		return pet.Profile{}, err
	}
	resp, err := a.remote(ctx, c)
	if err != nil {
		return pet.Profile{}, err
	}

	if !flagQuiet {
		events, err := c.EventsSince(ctx, st.LastEventID)
		if err != nil {
			log.Printf("ascendia: fetching daemon events: %v", err)
		}
		for _, ev := range events {
			if ev.Notification != nil {
				toastSink.Notify(*ev.Notification)
			}
		}
		if !resp.OK && a.declined != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", a.declined)
		}
	}
	return resp.Profile, nil
}

// daemonClient returns a client for the running daemon, if any.
func daemonClient() (*daemon.Client, bool) {
	if flagNoDaemon {
		return nil, false
	}
	pf := pidFile(flagDaemonPIDFile)
	if _, alive := pf.running(); !alive {
		return nil, false
	}
	return daemon.NewClient(pf.addr(appCfg.Daemon.Addr)), true
}

// showPet prints the pet card for the result of runAction.
func showPet(p pet.Profile, err error) error {
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(cli.RenderPetCard(p, time.Now()))
	return nil
}
