// Package main is wxrctl, the operator CLI for the weather bridge. It runs
// the same components as the Lambdas against the environment's
// configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"wxrmessenger/internal/config"
	"wxrmessenger/internal/external"
	"wxrmessenger/internal/logging"
	"wxrmessenger/internal/suppression"
)

var rootCmd = &cobra.Command{
	Use:           "wxrctl",
	Short:         "Operate the satellite messenger weather bridge",
	Long:          "wxrctl fetches forecasts, inspects and edits the suppression ledger, replays captured events, and runs a local HTTP front end.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtimeEnv is what every subcommand needs from the environment.
type runtimeEnv struct {
	cfg     *config.Config
	awsCfg  aws.Config
	logger  *slog.Logger
	clients *external.ClientRegistry
	ledger  *suppression.Ledger
	close   func()
}

func loadRuntime(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, err
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, level, cfg.Service).With("function", "wxrctl")

	awsCfg, err := config.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := suppression.OpenStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	return &runtimeEnv{
		cfg:     cfg,
		awsCfg:  awsCfg,
		logger:  logger,
		clients: external.NewClientRegistry(cfg, awsCfg, logger),
		ledger:  suppression.NewLedger(store, nil, logging.NewAdapter(logger)),
		close:   closeStore,
	}, nil
}
