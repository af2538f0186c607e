package types

import "fmt"

// PositionReport is the position carried by a satellite messenger email.
// A field is nil when neither the headers nor the body supplied it.
type PositionReport struct {
	Latitude  *float64 `validate:"required,latitude"`
	Longitude *float64 `validate:"required,longitude"`
}

// Complete reports whether both coordinates were found.
func (p PositionReport) Complete() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// String renders the report for logs. Missing fields print as "-".
func (p PositionReport) String() string {
	return fmt.Sprintf("%s,%s", coord(p.Latitude), coord(p.Longitude))
}

func coord(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f", *v)
}
