package types

import "time"

// UnitSystem selects how a forecast is requested and labelled.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// UnitSuffixes are the labels appended to rendered values.
type UnitSuffixes struct {
	Temperature   string
	Speed         string
	Precipitation string
}

// Suffixes returns the labels for the unit system. Anything other than
// UnitsImperial is treated as metric.
func (u UnitSystem) Suffixes() UnitSuffixes {
	if u == UnitsImperial {
		return UnitSuffixes{Temperature: "°F", Speed: "mph", Precipitation: "in"}
	}
	return UnitSuffixes{Temperature: "°C", Speed: "m/s", Precipitation: "mm"}
}

// CurrentConditions holds the observation at request time.
type CurrentConditions struct {
	Temperature      float64
	RelativeHumidity float64
	WindSpeed        float64
	WindGust         float64
	Precipitation    float64
}

// DailyOutlook summarizes one calendar day. Date is midnight in the
// location's local time zone.
type DailyOutlook struct {
	Date          time.Time
	TempMax       float64
	TempMin       float64
	WindSpeedMax  float64
	WindGustMax   float64
	PrecipProbMax float64
}

// NormalizedWeather is the provider-independent forecast the formatter consumes.
type NormalizedWeather struct {
	Timezone string
	Current  CurrentConditions
	Daily    []DailyOutlook
}
