package forecasts

import (
	"fmt"
	"math"
	"strings"

	"wxrmessenger/internal/types"
)

// Format renders weather as segmented plain text: one line for current
// conditions followed by one line per forecast day.
//
//	25°C RH 60% WS 5m/s WG 10m/s 5mm
//	01-01 30/20 10 15 50%
func Format(weather *types.NormalizedWeather, units types.UnitSystem) []string {
	return Segment(strings.Join(formatLines(weather, units), "\n"), DefaultSegmentLength)
}

func formatLines(weather *types.NormalizedWeather, units types.UnitSystem) []string {
	s := units.Suffixes()
	c := weather.Current

	lines := make([]string, 0, len(weather.Daily)+1)
	lines = append(lines, fmt.Sprintf("%s%s RH %s%% WS %s%s WG %s%s %s%s",
		round(c.Temperature), s.Temperature,
		round(c.RelativeHumidity),
		round(c.WindSpeed), s.Speed,
		round(c.WindGust), s.Speed,
		round(c.Precipitation), s.Precipitation,
	))

	for _, d := range weather.Daily {
		lines = append(lines, fmt.Sprintf("%s %s/%s %s %s %s%%",
			d.Date.Format("01-02"),
			round(d.TempMax), round(d.TempMin),
			round(d.WindSpeedMax), round(d.WindGustMax),
			round(d.PrecipProbMax),
		))
	}
	return lines
}

// round renders v as an integer, rounding half away from zero. Negative zero
// prints as "0".
func round(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%.0f", r)
}
