package inbound

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"wxrmessenger/internal/config"
	notify "wxrmessenger/internal/notifications/email"
	"wxrmessenger/internal/telemetry"
	"wxrmessenger/internal/types"
)

// Outcome is the terminal state of one inbound event.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFiltered  Outcome = "filtered"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

const (
	providerWeather = "open-meteo"
	providerMailer  = "ses"
)

// MailStore holds raw inbound messages keyed by SES message ID.
type MailStore interface {
	Get(ctx context.Context, messageID string) ([]byte, error)
	Delete(ctx context.Context, messageID string) error
}

// Mailer sends a fully composed message.
type Mailer interface {
	SendRaw(ctx context.Context, to, from string, raw []byte) (string, error)
}

// Forecaster returns reply segments for a coordinate.
type Forecaster interface {
	ForecastFor(ctx context.Context, lat, lon float64, units types.UnitSystem) ([]string, error)
}

// SuppressionChecker reports whether replies to an address are blocked.
// Lookup failures are expected to resolve to false.
type SuppressionChecker interface {
	IsSuppressed(ctx context.Context, address string) bool
}

// Dependencies are the collaborators of a Pipeline. Metrics, Clock and
// Logger are optional.
type Dependencies struct {
	Store        MailStore
	Mailer       Mailer
	Forecaster   Forecaster
	Suppressions SuppressionChecker
	Metrics      telemetry.Metrics
	Clock        clockwork.Clock
	Logger       types.Logger
}

// Pipeline answers position-report emails with forecasts.
type Pipeline struct {
	store        MailStore
	mailer       Mailer
	forecaster   Forecaster
	suppressions SuppressionChecker
	metrics      telemetry.Metrics
	clock        clockwork.Clock
	logger       types.Logger
	validate     *validator.Validate

	allow          AllowList
	imperialMarker string
	debugMarker    string
}

// NewPipeline creates a Pipeline from the mail settings and collaborators.
func NewPipeline(cfg config.MailConfig, deps Dependencies) *Pipeline {
	p := &Pipeline{
		store:          deps.Store,
		mailer:         deps.Mailer,
		forecaster:     deps.Forecaster,
		suppressions:   deps.Suppressions,
		metrics:        deps.Metrics,
		clock:          deps.Clock,
		logger:         deps.Logger,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		allow:          NewAllowList(cfg.AllowedSenders),
		imperialMarker: cfg.ImperialMarker,
		debugMarker:    cfg.DebugMarker,
	}
	if p.metrics == nil {
		p.metrics = telemetry.Noop{}
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.logger == nil {
		p.logger = types.NopLogger{}
	}
	return p
}

// Handle is the Lambda entrypoint. Every outcome has already been logged,
// so it never returns an error and SES never retries.
func (p *Pipeline) Handle(ctx context.Context, event events.SimpleEmailEvent) error {
	p.Process(ctx, event)
	return nil
}

// Process runs one inbound event to completion. Once the event names a
// message, the raw message is deleted exactly once on every exit path,
// including a panic.
func (p *Pipeline) Process(ctx context.Context, event events.SimpleEmailEvent) (outcome Outcome) {
	requestID := uuid.NewString()
	ctx = types.WithRequestID(ctx, requestID)
	logger := p.logger.With("request_id", requestID)

	defer func() {
		logger.Info("email processing complete", "outcome", string(outcome))
		p.metrics.RecordInboundOutcome(ctx, string(outcome))
	}()

	if len(event.Records) == 0 {
		logger.Error("no records found in SES event")
		return OutcomeMalformed
	}
	messageID := event.Records[0].SES.Mail.MessageID
	if messageID == "" {
		logger.Error("no message id found in SES event")
		return OutcomeMalformed
	}
	logger = logger.With("message_id", messageID)
	ctx = types.WithLogger(ctx, logger)

	defer p.cleanup(ctx, messageID, logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing email", "panic", fmt.Sprint(r))
			outcome = OutcomeFailed
		}
	}()

	return p.run(ctx, messageID, logger)
}

func (p *Pipeline) run(ctx context.Context, messageID string, logger types.Logger) Outcome {
	raw, err := p.store.Get(ctx, messageID)
	if err != nil {
		if types.IsNotFound(err) {
			logger.Error("raw email not found", "error", err)
			return OutcomeMalformed
		}
		logger.Error("failed to fetch raw email", "error", err)
		return OutcomeFailed
	}

	msg, err := ParseEmail(raw)
	if err != nil {
		logger.Error("failed to parse email", "error", err)
		return OutcomeFailed
	}
	if msg.To == "" {
		logger.Error("email has no recipient address")
		return OutcomeMalformed
	}

	flags := ParseRecipient(msg.To, p.imperialMarker, p.debugMarker)
	if flags.Debug {
		logger.Info("debug: parsed email",
			"from", msg.From,
			"to", msg.To,
			"subject", msg.Subject,
			"message_id_header", msg.MessageID,
			"header_count", len(msg.Headers),
			"text", msg.Text,
		)
	}

	sender := msg.From
	if !p.allow.Allows(sender) {
		logger.Info("ignoring email from non-allow-listed sender", "sender", types.RedactEmail(sender))
		return OutcomeFiltered
	}

	if p.suppressions.IsSuppressed(ctx, sender) {
		logger.Info("ignoring email from suppressed sender", "sender", types.RedactEmail(sender))
		return OutcomeFiltered
	}

	pos := ExtractPosition(msg.Headers, msg.Text)
	if !pos.Complete() {
		logger.Info("ignoring email without position report", "position", pos.String())
		return OutcomeFiltered
	}
	if err := p.validate.Struct(pos); err != nil {
		logger.Warn("ignoring email with out-of-range position", "position", pos.String(), "error", err)
		return OutcomeFiltered
	}

	segments, err := p.forecaster.ForecastFor(ctx, *pos.Latitude, *pos.Longitude, flags.Units)
	if err != nil {
		logger.Error("failed to get forecast", "position", pos.String(), "error", err)
		p.metrics.RecordExternalFailure(ctx, providerWeather)
		return OutcomeFailed
	}
	if flags.Debug {
		logger.Info("debug: outgoing segments", "count", len(segments), "segments", segments)
	}

	return p.reply(ctx, msg, segments, flags, logger)
}

// reply sends one message per segment, stopping at the first failure.
func (p *Pipeline) reply(ctx context.Context, msg *Email, segments []string, flags RecipientFlags, logger types.Logger) Outcome {
	now := p.clock.Now()
	sent := 0
	defer func() { p.metrics.RecordRepliesSent(ctx, flags.Units, sent) }()

	for i, segment := range segments {
		raw, err := Reply{
			To:        msg.From,
			From:      msg.To,
			InReplyTo: msg.MessageID,
			Body:      segment,
			Date:      now,
		}.Compose()
		if err != nil {
			logger.Error("failed to compose reply", "segment", i+1, "error", err)
			return OutcomeFailed
		}

		sesID, err := p.mailer.SendRaw(ctx, msg.From, msg.To, raw)
		if err != nil {
			if notify.IsBlocklistError(err) {
				logger.Warn("reply rejected by provider", "segment", i+1, "error", err)
			} else {
				logger.Error("failed to send reply", "segment", i+1, "error", err)
			}
			p.metrics.RecordExternalFailure(ctx, providerMailer)
			return OutcomeFailed
		}
		sent++

		if flags.Debug {
			logger.Info("debug: reply sent", "segment", i+1, "ses_message_id", sesID, "raw", string(raw))
		}
	}

	logger.Info("forecast replies sent",
		"sender", types.RedactEmail(msg.From),
		"units", string(flags.Units),
		"segments", sent,
	)
	return OutcomeDelivered
}

// cleanup deletes the raw message. It ignores cancellation of ctx.
func (p *Pipeline) cleanup(ctx context.Context, messageID string, logger types.Logger) {
	if err := p.store.Delete(context.WithoutCancel(ctx), messageID); err != nil {
		logger.Error("failed to delete raw email", "error", err)
		return
	}
	logger.Info("raw email deleted")
}

// SyntheticEvent builds the minimal SES receipt event for a message already
// placed in the mail store. Used for local replay.
func SyntheticEvent(messageID string) events.SimpleEmailEvent {
	var rec events.SimpleEmailRecord
	rec.EventVersion = "1.0"
	rec.EventSource = "aws:ses"
	rec.SES.Mail.MessageID = messageID
	return events.SimpleEmailEvent{Records: []events.SimpleEmailRecord{rec}}
}
