package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxrmessenger/internal/suppression"
)

var eventTime = time.Date(2026, 2, 7, 10, 30, 0, 0, time.UTC)

func TestClassify_Bounces(t *testing.T) {
	tests := []struct {
		name   string
		bounce BounceType
		window time.Duration
	}{
		{"permanent", BouncePermanent, PermanentSuppression},
		{"transient", BounceTransient, TemporarySuppression},
		{"undetermined", BounceUndetermined, TemporarySuppression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(BounceNotification{
				BounceType: tt.bounce,
				Recipients: []string{"a@example.com", "B@example.com"},
				Timestamp:  eventTime,
			})

			until := eventTime.Add(tt.window)
			assert.Equal(t, []suppression.Entry{
				{Address: "a@example.com", Until: until},
				{Address: "B@example.com", Until: until},
			}, got)
		})
	}
}

func TestClassify_PermanentIsAboutACentury(t *testing.T) {
	got := Classify(BounceNotification{BounceType: BouncePermanent, Recipients: []string{"a@example.com"}, Timestamp: eventTime})
	require.Len(t, got, 1)
	assert.Equal(t, 2126, got[0].Until.Year())

	got = Classify(BounceNotification{BounceType: BounceTransient, Recipients: []string{"a@example.com"}, Timestamp: eventTime})
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC), got[0].Until)
}

func TestClassify_Complaint(t *testing.T) {
	got := Classify(ComplaintNotification{
		FeedbackType: "abuse",
		Recipients:   []string{"angry@example.com"},
		Timestamp:    eventTime,
	})

	assert.Equal(t, []suppression.Entry{
		{Address: "angry@example.com", Until: eventTime.Add(PermanentSuppression)},
	}, got)
}

func TestClassify_NoRecipients(t *testing.T) {
	assert.Nil(t, Classify(BounceNotification{BounceType: BouncePermanent, Timestamp: eventTime}))
}

func TestClassify_IgnoredTypes(t *testing.T) {
	for _, n := range []FeedbackNotification{
		DeliveryNotification{Recipients: []string{"a@example.com"}},
		SendNotification{},
		RejectNotification{Reason: "virus"},
		OpenNotification{},
		ClickNotification{Link: "https://example.com"},
		RenderingFailureNotification{},
		DeliveryDelayNotification{DelayType: "MailboxFull"},
		SubscriptionNotification{},
		UnknownNotification{RawType: "Something"},
	} {
		assert.Nil(t, Classify(n), "%T should not suppress", n)
	}
}
