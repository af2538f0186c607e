package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wxrmessenger/internal/external"
	"wxrmessenger/internal/forecasts"
	"wxrmessenger/internal/inbound"
	"wxrmessenger/internal/logging"
	notify "wxrmessenger/internal/notifications/email"
	"wxrmessenger/internal/telemetry"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a captured message through a handler",
}

var replayEmailCmd = &cobra.Command{
	Use:   "email <file.eml>",
	Short: "Run a raw email through the inbound pipeline",
	Long: "Run a raw RFC 5322 message through the inbound pipeline. The message is read from the file, " +
		"not from the mail bucket. Outside APP_ENV=local replies are really sent.",
	Args: cobra.ExactArgs(1),
	RunE: runReplayEmail,
}

var replayFeedbackCmd = &cobra.Command{
	Use:   "feedback <file.json>",
	Short: "Apply an SNS feedback envelope to the suppression ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayFeedback,
}

func init() {
	replayCmd.AddCommand(replayEmailCmd, replayFeedbackCmd)
	rootCmd.AddCommand(replayCmd)
}

func runReplayEmail(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	store := external.NewMemoryMailStore()
	id := "replay-" + uuid.NewString()
	store.Put(id, raw)

	pipeline := inbound.NewPipeline(env.cfg.Mail, inbound.Dependencies{
		Store:        store,
		Mailer:       env.clients.Mailer,
		Forecaster:   forecasts.NewService(env.clients.Weather, env.logger),
		Suppressions: env.ledger,
		Metrics:      telemetry.Noop{},
		Logger:       logging.NewAdapter(env.logger),
	})
	outcome := pipeline.Process(ctx, inbound.SyntheticEvent(id))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outcome: %s\n", outcome)
	if stub, ok := env.clients.Mailer.(*external.StubMailer); ok {
		for i, m := range stub.Sent() {
			fmt.Fprintf(out, "--- reply %d to %s\n%s\n", i+1, m.To, m.Raw)
		}
	}
	return nil
}

func runReplayFeedback(cmd *cobra.Command, args []string) error {
	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	n, err := notify.ParseSNSEnvelope(body)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	processor := notify.NewFeedbackProcessor(env.ledger, telemetry.Noop{}, logging.NewAdapter(env.logger))
	written, err := processor.Apply(ctx, n)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d suppression(s) written\n", n.Type(), written)
	return err
}
