package inbound

import (
	"strings"

	"wxrmessenger/internal/types"
)

// RecipientFlags are the routing options encoded in the address the device
// sent to, e.g. wx-imp-debug@example.com.
type RecipientFlags struct {
	Units types.UnitSystem
	Debug bool
}

// ParseRecipient reads routing markers from the local part of recipient.
// Markers are case-insensitive substrings; an empty marker never matches.
func ParseRecipient(recipient, imperialMarker, debugMarker string) RecipientFlags {
	local, _, _ := strings.Cut(strings.ToLower(recipient), "@")

	flags := RecipientFlags{Units: types.UnitsMetric}
	if hasMarker(local, imperialMarker) {
		flags.Units = types.UnitsImperial
	}
	flags.Debug = hasMarker(local, debugMarker)
	return flags
}

func hasMarker(local, marker string) bool {
	return marker != "" && strings.Contains(local, strings.ToLower(marker))
}
