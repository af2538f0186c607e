package inbound

import (
	"regexp"
	"strconv"
	"strings"

	"wxrmessenger/internal/types"
)

const (
	fieldLatitude  = "Latitude"
	fieldLongitude = "Longitude"
)

// Body patterns are case-sensitive on the field name. The number group is
// deliberately loose; a first match that does not parse yields no value.
var (
	latitudeBody  = regexp.MustCompile(fieldLatitude + `: (-*[0-9.]+)`)
	longitudeBody = regexp.MustCompile(fieldLongitude + `: (-*[0-9.]+)`)
)

// ExtractPosition finds the reported coordinates. For each coordinate an
// X-SPOT-<Field> header wins when its value parses; otherwise the first
// "<Field>: <number>" in the body is used. Missing coordinates are nil.
func ExtractPosition(headers []Header, body string) types.PositionReport {
	return types.PositionReport{
		Latitude:  findCoordinate(fieldLatitude, latitudeBody, headers, body),
		Longitude: findCoordinate(fieldLongitude, longitudeBody, headers, body),
	}
}

func findCoordinate(field string, pattern *regexp.Regexp, headers []Header, body string) *float64 {
	key := "x-spot-" + field
	for _, h := range headers {
		if !strings.EqualFold(h.Key, key) {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(h.Value), 64); err == nil {
			return &v
		}
		break
	}

	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
