package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evolve-engine/internal/config"
	"evolve-engine/internal/outreach"
	"evolve-engine/internal/scheduler"
	"evolve-engine/internal/secrets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	every   time.Duration
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prospectbot",
	Short: "Find forum threads asking for help and send a short outreach email",
	Long: `prospectbot searches forums for small-business owners asking about
automation, scrapes each thread for a contact address, and sends one
personalised email per new thread. Dry-run (the default) only prints previews.

Threads already contacted are tracked in prospect-state.json under
OUTREACH_DATA_DIR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runOutreach,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().DurationVar(&every, "every", 0, "Repeat the run at this interval until interrupted (0 runs once)")
	rootCmd.AddCommand(repliesCmd, stateCmd, secretCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig builds the validated bot configuration: environment (with
// keychain fallback for secrets), then the optional YAML overlay.
func loadConfig() (config.Outreach, error) {
	cfg, err := config.LoadOutreach(secrets.Getenv)
	if err != nil {
		return cfg, err
	}
	if err := config.Overlay(&cfg, cfg.ConfigPath); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runOutreach(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, v := config.NormalizeOutreach(cfg)
	for _, w := range v.Warnings {
		logger.Warn(w)
	}
	if err := v.Err(); err != nil {
		return err
	}

	runner, err := outreach.Build(cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	logger.Debug("starting run",
		zap.String("search", string(cfg.Search)),
		zap.String("delivery", string(cfg.Delivery)),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Strings("keywords", cfg.Keywords),
	)

	if every <= 0 {
		_, err = runner.Run(ctx)
		return err
	}

	scheduler.Every(ctx, every, "outreach", func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}, logger)
	return nil
}
