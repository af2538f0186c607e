// Package forecasts turns provider weather data into the short plain-text
// messages a satellite messenger can receive.
//
// Three pieces live here: Segment packs lines into length-bounded messages,
// Format renders a NormalizedWeather into lines and segments them, and
// Service couples a weather Provider with Format.
package forecasts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSegmentLength is the largest message the messenger network accepts.
const DefaultSegmentLength = 140

// Segment packs the newline-separated lines of text into messages of at most
// maxLength characters. Lines are never split: a line longer than maxLength
// becomes a segment of its own. Each segment has trailing whitespace removed,
// and segments left blank by that are dropped. Empty or all-blank input yields
// a single empty segment.
func Segment(text string, maxLength int) []string {
	var (
		segments []string
		current  strings.Builder
		length   int
	)

	for _, line := range strings.Split(text, "\n") {
		lineLength := utf8.RuneCountInString(line)
		if length > 0 && length+lineLength > maxLength {
			segments = appendSegment(segments, current.String())
			current.Reset()
			length = 0
		}
		current.WriteString(line)
		current.WriteByte('\n')
		length += lineLength + 1
	}

	segments = appendSegment(segments, current.String())
	if len(segments) == 0 {
		return []string{""}
	}
	return segments
}

func appendSegment(segments []string, s string) []string {
	if s = trimEnd(s); s == "" {
		return segments
	}
	return append(segments, s)
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
