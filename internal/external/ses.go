package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"wxrmessenger/internal/types"
)

// SESAPI defines the subset of the SES v2 client used by SESMailer.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailerConfig holds the configuration for creating an SESMailer.
type SESMailerConfig struct {
	// ConfigSetName routes bounce and complaint events to the feedback topic.
	// Optional.
	ConfigSetName string
	Logger        *slog.Logger
}

// SESMailer implements RawMailer using SES v2 raw content. Authentication is
// handled by the Lambda's IAM role.
type SESMailer struct {
	api           SESAPI
	configSetName string
	logger        *slog.Logger
}

// NewSESMailer creates an SESMailer from an AWS config.
func NewSESMailer(awsCfg aws.Config, cfg SESMailerConfig) *SESMailer {
	return NewSESMailerWithAPI(sesv2.NewFromConfig(awsCfg), cfg)
}

// NewSESMailerWithAPI creates an SESMailer with a pre-configured SESAPI.
func NewSESMailerWithAPI(api SESAPI, cfg SESMailerConfig) *SESMailer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SESMailer{
		api:           api,
		configSetName: cfg.ConfigSetName,
		logger:        logger,
	}
}

// SendRaw transmits raw as-is. The envelope sender and recipient are set
// explicitly so SES does not have to parse them out of the headers.
//
// Error mapping:
//   - MessageRejected -> ErrCodeEmailBlocked
//   - TooManyRequestsException -> ErrCodeUpstreamRateLimited
//   - SendingPausedException -> ErrCodeUpstreamUnavailable
//   - Other -> ErrCodeUpstreamEmailProvider
func (s *SESMailer) SendRaw(ctx context.Context, to, from string, raw []byte) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: raw},
		},
	}
	if s.configSetName != "" {
		input.ConfigurationSetName = aws.String(s.configSetName)
	}

	result, err := s.api.SendEmail(ctx, input)
	if err != nil {
		return "", mapSESError(err)
	}
	return aws.ToString(result.MessageId), nil
}

func mapSESError(err error) error {
	var msgRejected *sestypes.MessageRejected
	if errors.As(err, &msgRejected) {
		return types.NewAppError(types.ErrCodeEmailBlocked, fmt.Sprintf("SES rejected message: %v", err), err)
	}

	var tooManyReqs *sestypes.TooManyRequestsException
	if errors.As(err, &tooManyReqs) {
		return types.NewAppError(types.ErrCodeUpstreamRateLimited, fmt.Sprintf("SES rate limit exceeded: %v", err), err)
	}

	var sendingPaused *sestypes.SendingPausedException
	if errors.As(err, &sendingPaused) {
		return types.NewAppError(types.ErrCodeUpstreamUnavailable, fmt.Sprintf("SES account sending paused: %v", err), err)
	}

	return types.NewAppError(types.ErrCodeUpstreamEmailProvider, fmt.Sprintf("SES error: %v", err), err)
}

var _ RawMailer = (*SESMailer)(nil)
