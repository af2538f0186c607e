package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Lambda images ship without a zoneinfo database.

	"wxrmessenger/internal/types"
)

// openMeteoAPIBase is the default Open-Meteo forecast API base URL.
const openMeteoAPIBase = "https://api.open-meteo.com"

const (
	openMeteoCurrentVars = "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,wind_gusts_10m"
	openMeteoDailyVars   = "temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max,wind_gusts_10m_max"
)

// OpenMeteoClientConfig holds the configuration for creating an OpenMeteoClient.
type OpenMeteoClientConfig struct {
	BaseURL      string // defaults to openMeteoAPIBase
	ForecastDays int    // defaults to 3
	Logger       *slog.Logger
}

// OpenMeteoClient fetches forecasts from the Open-Meteo JSON API and
// normalizes them into types.NormalizedWeather.
type OpenMeteoClient struct {
	base         *BaseClient
	baseURL      string
	forecastDays int
	logger       *slog.Logger
}

// NewOpenMeteoClient creates an OpenMeteoClient backed by a BaseClient named
// "open-meteo".
func NewOpenMeteoClient(httpClient *http.Client, cfg OpenMeteoClientConfig) *OpenMeteoClient {
	base := NewBaseClient(httpClient, "open-meteo", "wxrmessenger/1.0",
		WithUpstreamCode(types.ErrCodeUpstreamForecast))
	return NewOpenMeteoClientWithBase(base, cfg)
}

// NewOpenMeteoClientWithBase creates an OpenMeteoClient with a pre-configured
// BaseClient.
func NewOpenMeteoClientWithBase(base *BaseClient, cfg OpenMeteoClientConfig) *OpenMeteoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openMeteoAPIBase
	}
	days := cfg.ForecastDays
	if days <= 0 {
		days = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenMeteoClient{
		base:         base,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		forecastDays: days,
		logger:       logger,
	}
}

// Fetch retrieves current conditions and a daily outlook for the coordinate.
//
// Error mapping:
//   - 4xx -> types.ErrCodeUpstreamForecast with the provider's reason
//   - 429/5xx/transport -> handled by BaseClient
//   - undecodable body -> types.ErrCodeParseForecast
func (c *OpenMeteoClient) Fetch(ctx context.Context, lat, lon float64, units types.UnitSystem) (*types.NormalizedWeather, error) {
	reqURL := c.baseURL + "/v1/forecast?" + c.query(lat, lon, units).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create open-meteo request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "open-meteo request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeParseForecast, "failed to decode open-meteo response", err)
	}

	return payload.normalize()
}

func (c *OpenMeteoClient) query(lat, lon float64, units types.UnitSystem) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", openMeteoCurrentVars)
	q.Set("daily", openMeteoDailyVars)
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(c.forecastDays))

	if units == types.UnitsImperial {
		q.Set("temperature_unit", "fahrenheit")
		q.Set("wind_speed_unit", "mph")
		q.Set("precipitation_unit", "inch")
	} else {
		q.Set("wind_speed_unit", "ms")
	}
	return q
}

func (c *OpenMeteoClient) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr struct {
		Reason string `json:"reason"`
	}
	reason := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
		reason = apiErr.Reason
	}

	return types.NewAppError(
		types.ErrCodeUpstreamForecast,
		fmt.Sprintf("open-meteo returned %d: %s", resp.StatusCode, reason),
		nil,
	)
}

// ---------------------------------------------------------------------------
// Response Decoding
// ---------------------------------------------------------------------------

type openMeteoResponse struct {
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Current          current `json:"current"`
	Daily            daily   `json:"daily"`
}

type current struct {
	Temperature      float64 `json:"temperature_2m"`
	RelativeHumidity float64 `json:"relative_humidity_2m"`
	Precipitation    float64 `json:"precipitation"`
	WindSpeed        float64 `json:"wind_speed_10m"`
	WindGusts        float64 `json:"wind_gusts_10m"`
}

type daily struct {
	Time          []string  `json:"time"`
	TempMax       []float64 `json:"temperature_2m_max"`
	TempMin       []float64 `json:"temperature_2m_min"`
	PrecipProbMax []float64 `json:"precipitation_probability_max"`
	WindSpeedMax  []float64 `json:"wind_speed_10m_max"`
	WindGustsMax  []float64 `json:"wind_gusts_10m_max"`
}

func (r *openMeteoResponse) location() *time.Location {
	if r.Timezone != "" {
		if loc, err := time.LoadLocation(r.Timezone); err == nil {
			return loc
		}
	}
	return time.FixedZone(r.Timezone, r.UTCOffsetSeconds)
}

func (r *openMeteoResponse) normalize() (*types.NormalizedWeather, error) {
	loc := r.location()
	d := r.Daily

	for name, series := range map[string][]float64{
		"temperature_2m_max":            d.TempMax,
		"temperature_2m_min":            d.TempMin,
		"precipitation_probability_max": d.PrecipProbMax,
		"wind_speed_10m_max":            d.WindSpeedMax,
		"wind_gusts_10m_max":            d.WindGustsMax,
	} {
		if len(series) != len(d.Time) {
			return nil, types.NewAppError(types.ErrCodeParseForecast,
				fmt.Sprintf("daily series %s has %d values for %d days", name, len(series), len(d.Time)), nil)
		}
	}

	out := &types.NormalizedWeather{
		Timezone: r.Timezone,
		Current: types.CurrentConditions{
			Temperature:      r.Current.Temperature,
			RelativeHumidity: r.Current.RelativeHumidity,
			WindSpeed:        r.Current.WindSpeed,
			WindGust:         r.Current.WindGusts,
			Precipitation:    r.Current.Precipitation,
		},
		Daily: make([]types.DailyOutlook, 0, len(d.Time)),
	}

	for i, day := range d.Time {
		date, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeParseForecast,
				fmt.Sprintf("invalid daily date %q", day), err)
		}
		out.Daily = append(out.Daily, types.DailyOutlook{
			Date:          date,
			TempMax:       d.TempMax[i],
			TempMin:       d.TempMin[i],
			WindSpeedMax:  d.WindSpeedMax[i],
			WindGustMax:   d.WindGustsMax[i],
			PrecipProbMax: d.PrecipProbMax[i],
		})
	}
	return out, nil
}

var _ WeatherProvider = (*OpenMeteoClient)(nil)
