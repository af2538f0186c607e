package external

import (
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"

	"wxrmessenger/internal/config"
)

// ClientRegistry holds the external collaborators of the inbound pipeline.
type ClientRegistry struct {
	Mail    MailStore
	Mailer  RawMailer
	Weather WeatherProvider
}

// NewClientRegistry builds stub clients when APP_ENV=local and real ones
// otherwise. awsCfg is ignored in local mode.
func NewClientRegistry(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) *ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.IsLocal() {
		logger.Info("initializing external clients in STUB mode", "environment", cfg.Environment)
		stubLogger := logger.With("mode", "stub")
		return &ClientRegistry{
			Mail:    NewMemoryMailStore(),
			Mailer:  NewStubMailer(stubLogger),
			Weather: NewStubWeatherProvider(stubLogger),
		}
	}

	logger.Info("initializing external clients in PRODUCTION mode", "environment", cfg.Environment)
	return &ClientRegistry{
		Mail: NewS3MailStore(awsCfg, cfg.AWS.MailBucket, logger.With("client", "s3")),
		Mailer: NewSESMailer(awsCfg, SESMailerConfig{
			ConfigSetName: cfg.Mail.ConfigurationSet,
			Logger:        logger.With("client", "ses"),
		}),
		Weather: NewOpenMeteoClient(&http.Client{Timeout: cfg.Forecast.Timeout}, OpenMeteoClientConfig{
			BaseURL:      cfg.Forecast.BaseURL,
			ForecastDays: cfg.Forecast.Days,
			Logger:       logger.With("client", "open-meteo"),
		}),
	}
}
