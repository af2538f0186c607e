package forecasts

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"wxrmessenger/internal/types"
)

func sixDayWeather() *types.NormalizedWeather {
	day := func(d int, max, min, ws, wg, pp float64) types.DailyOutlook {
		return types.DailyOutlook{
			Date:          time.Date(3000, time.January, d, 0, 0, 0, 0, time.UTC),
			TempMax:       max,
			TempMin:       min,
			WindSpeedMax:  ws,
			WindGustMax:   wg,
			PrecipProbMax: pp,
		}
	}
	return &types.NormalizedWeather{
		Current: types.CurrentConditions{
			Temperature:      25,
			RelativeHumidity: 60,
			WindSpeed:        5,
			WindGust:         10,
			Precipitation:    5,
		},
		Daily: []types.DailyOutlook{
			day(1, 30, 20, 10, 15, 50),
			day(2, 28, 18, 8, 12, 40),
			day(3, 10, 20, 6, 10, 30),
			day(4, 20, 30, 4, 8, 20),
			day(5, 30, 40, 2, 6, 10),
			day(6, 10, 30, 0, 4, 0),
		},
	}
}

func TestFormatMetric(t *testing.T) {
	got := Format(sixDayWeather(), types.UnitsMetric)

	assert.Equal(t, []string{
		"25°C RH 60% WS 5m/s WG 10m/s 5mm\n" +
			"01-01 30/20 10 15 50%\n" +
			"01-02 28/18 8 12 40%\n" +
			"01-03 10/20 6 10 30%\n" +
			"01-04 20/30 4 8 20%\n" +
			"01-05 30/40 2 6 10%",
		"01-06 10/30 0 4 0%",
	}, got)
	for _, s := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), DefaultSegmentLength)
	}
}

func TestFormatImperial(t *testing.T) {
	got := Format(sixDayWeather(), types.UnitsImperial)

	assert.Equal(t, []string{
		"25°F RH 60% WS 5mph WG 10mph 5in\n" +
			"01-01 30/20 10 15 50%\n" +
			"01-02 28/18 8 12 40%\n" +
			"01-03 10/20 6 10 30%\n" +
			"01-04 20/30 4 8 20%\n" +
			"01-05 30/40 2 6 10%",
		"01-06 10/30 0 4 0%",
	}, got)
}

func TestFormatRounding(t *testing.T) {
	w := &types.NormalizedWeather{
		Current: types.CurrentConditions{
			Temperature:      -3.5,
			RelativeHumidity: 59.5,
			WindSpeed:        4.49,
			WindGust:         -0.2,
			Precipitation:    0.04,
		},
	}

	assert.Equal(t, []string{"-4°C RH 60% WS 4m/s WG 0m/s 0mm"}, Format(w, types.UnitsMetric))
}

func TestFormatUsesLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	w := &types.NormalizedWeather{
		Daily: []types.DailyOutlook{{Date: time.Date(2024, time.December, 31, 0, 0, 0, 0, loc)}},
	}

	got := Format(w, types.UnitsMetric)
	assert.Equal(t, []string{"0°C RH 0% WS 0m/s WG 0m/s 0mm\n12-31 0/0 0 0 0%"}, got)
}
