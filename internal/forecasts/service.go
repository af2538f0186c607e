package forecasts

import (
	"context"
	"fmt"
	"log/slog"

	"wxrmessenger/internal/types"
)

// Provider fetches a forecast for a coordinate in the requested units.
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64, units types.UnitSystem) (*types.NormalizedWeather, error)
}

// Service fetches forecasts and renders them as messenger segments.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, logger: logger}
}

// ForecastFor returns the formatted segments for the coordinate. Provider
// errors are returned unchanged so callers can inspect the AppError code.
func (s *Service) ForecastFor(ctx context.Context, lat, lon float64, units types.UnitSystem) ([]string, error) {
	weather, err := s.provider.Fetch(ctx, lat, lon, units)
	if err != nil {
		return nil, err
	}
	if weather == nil {
		return nil, types.NewAppError(types.ErrCodeParseForecast,
			fmt.Sprintf("provider returned no data for %.4f,%.4f", lat, lon), nil)
	}

	segments := Format(weather, units)
	s.logger.DebugContext(ctx, "forecast formatted",
		"units", string(units),
		"days", len(weather.Daily),
		"segments", len(segments),
	)
	return segments, nil
}
