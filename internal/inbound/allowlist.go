package inbound

import "strings"

// AllowList decides which senders may trigger a reply. Patterns starting
// with "@" match the sender's domain; other patterns match a whole address.
// Matching is case-insensitive.
type AllowList struct {
	domains   []string
	addresses map[string]struct{}
}

// NewAllowList builds an AllowList, ignoring blank patterns.
func NewAllowList(patterns []string) AllowList {
	a := AllowList{addresses: make(map[string]struct{})}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "":
		case strings.HasPrefix(p, "@"):
			a.domains = append(a.domains, p)
		default:
			a.addresses[p] = struct{}{}
		}
	}
	return a
}

// Allows reports whether sender matches any pattern. An empty sender never
// matches.
func (a AllowList) Allows(sender string) bool {
	sender = strings.ToLower(strings.TrimSpace(sender))
	if sender == "" {
		return false
	}
	if _, ok := a.addresses[sender]; ok {
		return true
	}
	for _, d := range a.domains {
		if strings.HasSuffix(sender, d) {
			return true
		}
	}
	return false
}
