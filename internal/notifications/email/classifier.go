package email

import (
	"time"

	"wxrmessenger/internal/suppression"
)

const (
	// PermanentSuppression is long enough to never expire in practice.
	PermanentSuppression = 100 * 365 * 24 * time.Hour
	// TemporarySuppression covers soft bounces.
	TemporarySuppression = 30 * 24 * time.Hour
)

// Classify maps a feedback notification to the suppressions it implies.
// Windows are measured from the event timestamp, not from processing time.
// Notification types that do not affect deliverability yield nil.
func Classify(n FeedbackNotification) []suppression.Entry {
	switch v := n.(type) {
	case BounceNotification:
		window := TemporarySuppression
		if v.BounceType == BouncePermanent {
			window = PermanentSuppression
		}
		return entries(v.Recipients, v.Timestamp.Add(window))
	case ComplaintNotification:
		return entries(v.Recipients, v.Timestamp.Add(PermanentSuppression))
	default:
		return nil
	}
}

func entries(recipients []string, until time.Time) []suppression.Entry {
	if len(recipients) == 0 {
		return nil
	}
	out := make([]suppression.Entry, 0, len(recipients))
	for _, addr := range recipients {
		out = append(out, suppression.Entry{Address: addr, Until: until})
	}
	return out
}
