// Package main is the entrypoint for the inbound email Lambda.
//
// SES stores each received message in S3 and invokes this function with the
// message ID. The handler fetches and parses the message, checks the sender
// against the allow-list and the suppression ledger, and replies with a
// forecast split into messenger-sized segments. The raw object is deleted
// whatever the outcome.
//
// Cold start:
//  1. Load configuration (SSM-resolved outside local mode).
//  2. Build the logger, AWS config and external clients.
//  3. Open the suppression store and build the pipeline.
//  4. Call lambda.Start, or replay one event from stdin when APP_ENV=local.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"wxrmessenger/internal/config"
	"wxrmessenger/internal/external"
	"wxrmessenger/internal/forecasts"
	"wxrmessenger/internal/inbound"
	"wxrmessenger/internal/logging"
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

	logger := logging.New(cfg.LogLevel, cfg.Service).With("function", "email-handler")
	logger.Info("Email handler initializing (cold start)",
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

	clients := external.NewClientRegistry(cfg, awsCfg, logger)
	pipeline := inbound.NewPipeline(cfg.Mail, inbound.Dependencies{
		Store:        clients.Mail,
		Mailer:       clients.Mailer,
		Forecaster:   forecasts.NewService(clients.Weather, logger),
		Suppressions: suppression.NewLedger(store, nil, typedLogger.With("component", "ledger")),
		Metrics:      telemetry.New(cfg, awsCfg, typedLogger),
		Logger:       typedLogger,
	})

	logger.Info("Email handler initialized",
		"mail_bucket", cfg.AWS.MailBucket,
		"ledger_backend", cfg.Ledger.Backend,
		"allowed_senders", len(cfg.Mail.AllowedSenders),
	)

	// Local mode: read from stdin instead of starting the Lambda runtime.
	// Input is either an SES event JSON or a raw RFC 5322 message, which is
	// placed in the stub mail store under a generated ID first.
	// Usage: APP_ENV=local go run ./cmd/email-handler < report.eml
	if cfg.IsLocal() {
		logger.Info("APP_ENV=local: reading event from stdin")
		payload, err := io.ReadAll(os.Stdin)
		if err != nil || len(payload) == 0 {
			logger.Error("No input received on stdin", "error", err)
			os.Exit(1)
		}
		event, err := localEvent(payload, clients.Mail)
		if err != nil {
			logger.Error("Failed to build event from stdin", "error", err)
			os.Exit(1)
		}
		outcome := pipeline.Process(ctx, event)
		logger.Info("Handler execution completed", "outcome", string(outcome))
		return
	}

	lambda.Start(pipeline.Handle)
}

func localEvent(payload []byte, store external.MailStore) (events.SimpleEmailEvent, error) {
	if trimmed := bytes.TrimSpace(payload); len(trimmed) > 0 && trimmed[0] == '{' {
		var event events.SimpleEmailEvent
		if err := json.Unmarshal(trimmed, &event); err != nil {
			return events.SimpleEmailEvent{}, fmt.Errorf("parse SES event: %w", err)
		}
		return event, nil
	}

	mem, ok := store.(*external.MemoryMailStore)
	if !ok {
		return events.SimpleEmailEvent{}, fmt.Errorf("raw message input needs the local stub mail store")
	}
	id := "local-" + uuid.NewString()
	mem.Put(id, payload)
	return inbound.SyntheticEvent(id), nil
}
