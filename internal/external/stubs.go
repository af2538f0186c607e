package external

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wxrmessenger/internal/types"
)

// ---------------------------------------------------------------------------
// Stub Implementations
//
// Used when APP_ENV=local so the handlers and the replay server run without
// AWS credentials or network access.
// ---------------------------------------------------------------------------

// MemoryMailStore implements MailStore over a map.
type MemoryMailStore struct {
	mu       sync.Mutex
	messages map[string][]byte
	deleted  []string
}

// NewMemoryMailStore creates an empty MemoryMailStore.
func NewMemoryMailStore() *MemoryMailStore {
	return &MemoryMailStore{messages: make(map[string][]byte)}
}

// Put stores raw under messageID, replacing any previous message.
func (s *MemoryMailStore) Put(messageID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[messageID] = append([]byte(nil), raw...)
}

func (s *MemoryMailStore) Get(_ context.Context, messageID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.messages[messageID]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundMessage, fmt.Sprintf("no raw message %s", messageID), nil)
	}
	return raw, nil
}

func (s *MemoryMailStore) Delete(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, messageID)
	s.deleted = append(s.deleted, messageID)
	return nil
}

// Deleted returns the IDs passed to Delete, in call order.
func (s *MemoryMailStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// SentMessage is a message captured by StubMailer.
type SentMessage struct {
	To, From string
	Raw      []byte
}

// StubMailer implements RawMailer by logging and recording each message.
type StubMailer struct {
	logger *slog.Logger
	mu     sync.Mutex
	sent   []SentMessage
}

// NewStubMailer creates a new StubMailer.
func NewStubMailer(logger *slog.Logger) *StubMailer {
	return &StubMailer{logger: logger}
}

func (s *StubMailer) SendRaw(ctx context.Context, to, from string, raw []byte) (string, error) {
	s.logger.InfoContext(ctx, "stub: SendRaw called",
		"to", to,
		"from", from,
		"bytes", len(raw),
	)
	s.mu.Lock()
	s.sent = append(s.sent, SentMessage{To: to, From: from, Raw: append([]byte(nil), raw...)})
	s.mu.Unlock()
	return "stub-" + uuid.NewString(), nil
}

// Sent returns every message passed to SendRaw.
func (s *StubMailer) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// StubWeatherProvider returns a fixed three-day forecast starting today (UTC).
type StubWeatherProvider struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewStubWeatherProvider creates a new StubWeatherProvider.
func NewStubWeatherProvider(logger *slog.Logger) *StubWeatherProvider {
	return &StubWeatherProvider{logger: logger, now: time.Now}
}

func (s *StubWeatherProvider) Fetch(ctx context.Context, lat, lon float64, units types.UnitSystem) (*types.NormalizedWeather, error) {
	s.logger.InfoContext(ctx, "stub: Fetch called",
		"lat", lat,
		"lon", lon,
		"units", string(units),
	)

	today := s.now().UTC().Truncate(24 * time.Hour)
	w := &types.NormalizedWeather{
		Timezone: "UTC",
		Current: types.CurrentConditions{
			Temperature: 18, RelativeHumidity: 55, WindSpeed: 4, WindGust: 9, Precipitation: 0,
		},
	}
	for i := 0; i < 3; i++ {
		w.Daily = append(w.Daily, types.DailyOutlook{
			Date:          today.AddDate(0, 0, i),
			TempMax:       21 + float64(i),
			TempMin:       11 + float64(i),
			WindSpeedMax:  6,
			WindGustMax:   12,
			PrecipProbMax: float64(10 * i),
		})
	}
	return w, nil
}

var (
	_ MailStore       = (*MemoryMailStore)(nil)
	_ RawMailer       = (*StubMailer)(nil)
	_ WeatherProvider = (*StubWeatherProvider)(nil)
)
