// Package config defines the configuration for the weather bridge. It is
// loaded once per Lambda cold start and treated as immutable afterwards.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
package config

import (
	"time"

	"wxrmessenger/internal/types"
)

// SecretString is an alias for types.SecretString.
type SecretString = types.SecretString

// Ledger backends.
const (
	LedgerDynamoDB = "dynamodb"
	LedgerPostgres = "postgres"
	LedgerMemory   = "memory"
)

// Config is the top-level configuration struct.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"wxrmessenger"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	AWS           AWSConfig
	Mail          MailConfig
	Forecast      ForecastConfig
	Ledger        LedgerConfig
	Observability ObservabilityConfig
	Server        ServerConfig

	// Injected via ldflags, not Env
	Build BuildInfo `ignored:"true"`
}

// IsLocal reports whether the process runs against local stubs.
func (c *Config) IsLocal() bool {
	return c.Environment == localEnv
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// MailBucket is where SES stores inbound raw messages, keyed by message ID.
	MailBucket string `envconfig:"MAIL_BUCKET"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// MailConfig controls who may use the bridge and how recipients are read.
type MailConfig struct {
	// AllowedSenders entries starting with "@" match a sender domain,
	// anything else matches a full address. Case-insensitive.
	AllowedSenders []string `envconfig:"ALLOWED_SENDERS" default:"@findmespot.com,@textmyspotx.com" validate:"min=1,dive,required"`

	// Substrings of the recipient local part that switch behaviour.
	ImperialMarker string `envconfig:"IMPERIAL_MARKER" default:"imp" validate:"required"`
	DebugMarker    string `envconfig:"DEBUG_MARKER" default:"debug"`

	ConfigurationSet string `envconfig:"SES_CONFIGURATION_SET"`
}

// ForecastConfig configures the Open-Meteo client.
type ForecastConfig struct {
	BaseURL string        `envconfig:"OPEN_METEO_BASE_URL" default:"https://api.open-meteo.com" validate:"required,url"`
	Days    int           `envconfig:"FORECAST_DAYS" default:"3" validate:"min=1,max=16"`
	Timeout time.Duration `envconfig:"FORECAST_TIMEOUT" default:"10s"`
}

// LedgerConfig selects and configures the suppression ledger store.
type LedgerConfig struct {
	Backend     string       `envconfig:"LEDGER_BACKEND" default:"dynamodb" validate:"oneof=dynamodb postgres memory"`
	TableName   string       `envconfig:"SUPPRESSION_TABLE" default:"wxr-suppressions" validate:"required"`
	DatabaseURL SecretString `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"WxrMessenger"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// ServerConfig is only read by the local replay server.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrMissingEnv    ConfigErrorType = "MISSING_ENV"
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)
