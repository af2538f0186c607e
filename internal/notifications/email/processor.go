package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"wxrmessenger/internal/suppression"
	"wxrmessenger/internal/telemetry"
	"wxrmessenger/internal/types"
)

// LedgerWriter is the write side of the suppression ledger.
type LedgerWriter interface {
	Put(ctx context.Context, address string, until time.Time) error
}

var _ LedgerWriter = (*suppression.Ledger)(nil)

// providerLedger labels ledger write failures in the external failure metric.
const providerLedger = "ledger"

// FeedbackProcessor turns SES feedback into ledger writes.
type FeedbackProcessor struct {
	ledger  LedgerWriter
	metrics telemetry.Metrics
	logger  types.Logger
}

// NewFeedbackProcessor creates a FeedbackProcessor. A nil metrics recorder
// discards metrics.
func NewFeedbackProcessor(ledger LedgerWriter, metrics telemetry.Metrics, logger types.Logger) *FeedbackProcessor {
	if metrics == nil {
		metrics = telemetry.Noop{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &FeedbackProcessor{ledger: ledger, metrics: metrics, logger: logger}
}

// Handle is the Lambda entrypoint for the SNS feedback topic.
//
// Every record is processed even if earlier ones fail. Failures are logged
// and counted but never returned, so the runtime does not redeliver.
func (p *FeedbackProcessor) Handle(ctx context.Context, event events.SNSEvent) error {
	for _, record := range event.Records {
		rctx := types.WithRequestID(ctx, record.SNS.MessageID)
		logger := p.logger.With("sns_message_id", record.SNS.MessageID)
		rctx = types.WithLogger(rctx, logger)

		if _, err := p.Process(rctx, []byte(record.SNS.Message)); err != nil {
			switch types.CategoryOf(err) {
			case types.CategoryValidation, types.CategoryParse:
				logger.Warn("dropping invalid feedback notification", "error", err)
			default:
				logger.Error("feedback notification not fully recorded", "error", err)
			}
		}
	}
	return nil
}

// Process parses one SES notification body and applies it. It returns the
// number of suppressions written.
func (p *FeedbackProcessor) Process(ctx context.Context, body []byte) (int, error) {
	n, err := ParseNotification(body)
	if err != nil {
		return 0, err
	}
	return p.Apply(ctx, n)
}

// Apply writes the suppressions implied by n. A failed write for one
// address is logged and counted and does not stop the remaining addresses.
// The joined write errors are returned for interactive callers.
func (p *FeedbackProcessor) Apply(ctx context.Context, n FeedbackNotification) (int, error) {
	logger := types.LoggerFromContext(ctx, p.logger).With(
		"notification_type", string(n.Type()),
		"ses_message_id", n.MessageID(),
	)

	entries := Classify(n)
	if entries == nil {
		logger.Info("feedback notification requires no action")
		p.metrics.RecordFeedbackIgnored(ctx, string(n.Type()))
		return 0, nil
	}

	if b, ok := n.(BounceNotification); ok {
		logger = logger.With("bounce_type", string(b.BounceType), "bounce_sub_type", b.BounceSubType)
	}
	logger.Info("handling feedback notification", "recipients", len(entries))

	written := 0
	var failed []error
	for _, e := range entries {
		if err := p.ledger.Put(ctx, e.Address, e.Until); err != nil {
			logger.Error("failed to record suppression",
				"email", types.RedactEmail(e.Address),
				"error", err,
			)
			p.metrics.RecordExternalFailure(ctx, providerLedger)
			failed = append(failed, fmt.Errorf("suppress %s: %w", types.RedactEmail(e.Address), err))
			continue
		}
		written++
		p.metrics.RecordSuppressionWritten(ctx, string(n.Type()))
	}

	if len(failed) > 0 {
		logger.Error("some suppressions were not recorded",
			"written", written,
			"failed", len(failed),
		)
		return written, errors.Join(failed...)
	}
	return written, nil
}
