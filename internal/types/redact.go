package types

import "strings"

// RedactEmail masks an address for logs: "john@gmail.com" becomes
// "j***@gmail.com". Strings without "@" are masked entirely.
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***"
	}
	if local == "" {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}
