package external

import (
	"context"

	"wxrmessenger/internal/types"
)

// MailStore holds the raw RFC 5322 messages SES deposits on receipt, keyed by
// SES message ID. Get returns a not_found_message AppError for unknown IDs.
type MailStore interface {
	Get(ctx context.Context, messageID string) ([]byte, error)
	Delete(ctx context.Context, messageID string) error
}

// RawMailer sends a fully composed message to a single recipient and returns
// the provider's message ID.
type RawMailer interface {
	SendRaw(ctx context.Context, to, from string, raw []byte) (providerMsgID string, err error)
}

// WeatherProvider fetches a forecast for a coordinate.
type WeatherProvider interface {
	Fetch(ctx context.Context, lat, lon float64, units types.UnitSystem) (*types.NormalizedWeather, error)
}
