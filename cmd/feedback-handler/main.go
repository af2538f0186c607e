// Package main is the entrypoint for the SES feedback Lambda.
//
// SES publishes bounce and complaint notifications to an SNS topic this
// function subscribes to. Each notification is classified and the affected
// addresses are written to the suppression ledger, so the email handler
// stops replying to them.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"wxrmessenger/internal/config"
	"wxrmessenger/internal/logging"
	notify "wxrmessenger/internal/notifications/email"
	"wxrmessenger/internal/suppression"
	"wxrmessenger/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Service).With("function", "feedback-handler")
	logger.Info("Feedback handler initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
	)
	typedLogger := logging.NewAdapter(logger)

	awsCfg, err := config.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := suppression.OpenStore(ctx, cfg, awsCfg)
	if err != nil {
		logger.Error("Failed to open suppression store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	processor := notify.NewFeedbackProcessor(
		suppression.NewLedger(store, nil, typedLogger.With("component", "ledger")),
		telemetry.New(cfg, awsCfg, typedLogger),
		typedLogger,
	)

	logger.Info("Feedback handler initialized",
		"ledger_backend", cfg.Ledger.Backend,
		"suppression_table", cfg.Ledger.TableName,
	)

	// Local mode: read one SNS event from stdin instead of starting the
	// Lambda runtime.
	// Usage: APP_ENV=local LEDGER_BACKEND=memory go run ./cmd/feedback-handler < sns-event.json
	if cfg.IsLocal() {
		logger.Info("APP_ENV=local: reading SNS event from stdin")
		payload, err := io.ReadAll(os.Stdin)
		if err != nil || len(payload) == 0 {
			logger.Error("No input received on stdin", "error", err)
			os.Exit(1)
		}
		var event events.SNSEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Error("Failed to parse stdin as SNS event", "error", err)
			os.Exit(1)
		}
		if err := processor.Handle(ctx, event); err != nil {
			logger.Error("Handler execution failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Handler execution completed successfully", "records_processed", len(event.Records))
		return
	}

	lambda.Start(processor.Handle)
}
