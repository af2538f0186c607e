package email

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxrmessenger/internal/types"
)

// buildSNSMessage wraps an SES notification in the envelope SNS posts to
// HTTP subscribers.
func buildSNSMessage(t *testing.T, ses SESNotification) []byte {
	t.Helper()

	sesJSON, err := json.Marshal(ses)
	require.NoError(t, err)

	snsJSON, err := json.Marshal(SNSNotification{
		Type:      "Notification",
		MessageId: "sns-msg-001",
		TopicArn:  "arn:aws:sns:us-east-1:123456789012:ses-feedback",
		Message:   string(sesJSON),
		Timestamp: "2026-02-07T12:00:00.000Z",
	})
	require.NoError(t, err)
	return snsJSON
}

func assertCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestParseNotification_PermanentBounce(t *testing.T) {
	body := `{
		"notificationType": "Bounce",
		"bounce": {
			"bounceType": "Permanent",
			"bounceSubType": "General",
			"bouncedRecipients": [
				{"emailAddress": "dead@example.com", "action": "failed", "status": "5.1.1"},
				{"emailAddress": "gone@example.com"}
			],
			"timestamp": "2026-02-07T10:30:00.123Z",
			"feedbackId": "fb-1"
		},
		"mail": {"messageId": "ses-msg-aaa-111"}
	}`

	n, err := ParseNotification([]byte(body))
	require.NoError(t, err)

	bounce, ok := n.(BounceNotification)
	require.True(t, ok, "expected BounceNotification, got %T", n)
	assert.Equal(t, TypeBounce, bounce.Type())
	assert.Equal(t, "ses-msg-aaa-111", bounce.MessageID())
	assert.Equal(t, BouncePermanent, bounce.BounceType)
	assert.Equal(t, "General", bounce.BounceSubType)
	assert.Equal(t, []string{"dead@example.com", "gone@example.com"}, bounce.Recipients)
	assert.Equal(t, "fb-1", bounce.FeedbackID)
	assert.True(t, bounce.Timestamp.Equal(time.Date(2026, 2, 7, 10, 30, 0, 123e6, time.UTC)))
}

func TestParseNotification_Complaint(t *testing.T) {
	body := `{
		"notificationType": "Complaint",
		"complaint": {
			"complainedRecipients": [{"emailAddress": "angry@example.com"}],
			"complaintFeedbackType": "abuse",
			"timestamp": "2026-02-07T10:30:00Z"
		},
		"mail": {"messageId": "ses-msg-bbb"}
	}`

	n, err := ParseNotification([]byte(body))
	require.NoError(t, err)

	c, ok := n.(ComplaintNotification)
	require.True(t, ok, "expected ComplaintNotification, got %T", n)
	assert.Equal(t, []string{"angry@example.com"}, c.Recipients)
	assert.Equal(t, "abuse", c.FeedbackType)
	assert.Equal(t, time.Date(2026, 2, 7, 10, 30, 0, 0, time.UTC), c.Timestamp)
}

func TestParseNotification_EventTypeDiscriminator(t *testing.T) {
	body := `{"eventType": "Bounce", "bounce": {"bounceType": "Transient", "bounceSubType": "MailboxFull",
		"bouncedRecipients": [{"emailAddress": "full@example.com"}], "timestamp": "2026-02-07T10:30:00Z"},
		"mail": {"messageId": "m"}}`

	n, err := ParseNotification([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, TypeBounce, n.Type())
	assert.Equal(t, BounceTransient, n.(BounceNotification).BounceType)
}

func TestParseNotification_NonActionableTypes(t *testing.T) {
	tests := []struct {
		body string
		want NotificationType
	}{
		{`{"notificationType":"Delivery","delivery":{"recipients":["a@example.com"]},"mail":{"messageId":"m"}}`, TypeDelivery},
		{`{"eventType":"Send","mail":{"messageId":"m"}}`, TypeSend},
		{`{"eventType":"Reject","reject":{"reason":"Bad content"},"mail":{"messageId":"m"}}`, TypeReject},
		{`{"eventType":"Open","mail":{"messageId":"m"}}`, TypeOpen},
		{`{"eventType":"Click","click":{"link":"https://example.com"},"mail":{"messageId":"m"}}`, TypeClick},
		{`{"eventType":"Rendering Failure","failure":{"templateName":"t","errorMessage":"e"},"mail":{"messageId":"m"}}`, TypeRenderingFailure},
		{`{"eventType":"RenderingFailure","mail":{"messageId":"m"}}`, TypeRenderingFailure},
		{`{"eventType":"DeliveryDelay","deliveryDelay":{"delayType":"MailboxFull"},"mail":{"messageId":"m"}}`, TypeDeliveryDelay},
		{`{"eventType":"Subscription","mail":{"messageId":"m"}}`, TypeSubscription},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			n, err := ParseNotification([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Type())
			assert.Equal(t, "m", n.MessageID())
		})
	}
}

func TestParseNotification_VariantDetails(t *testing.T) {
	n, err := ParseNotification([]byte(`{"eventType":"Reject","reject":{"reason":"Bad content"},"mail":{"messageId":"m"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Bad content", n.(RejectNotification).Reason)

	n, err = ParseNotification([]byte(`{"eventType":"DeliveryDelay","deliveryDelay":{"delayType":"MailboxFull"},"mail":{"messageId":"m"}}`))
	require.NoError(t, err)
	assert.Equal(t, "MailboxFull", n.(DeliveryDelayNotification).DelayType)
}

func TestParseNotification_UnknownType(t *testing.T) {
	n, err := ParseNotification([]byte(`{"notificationType":"AmpOpen","mail":{"messageId":"m"}}`))
	require.NoError(t, err)

	u, ok := n.(UnknownNotification)
	require.True(t, ok)
	assert.Equal(t, NotificationType("AmpOpen"), u.Type())
}

func TestParseNotification_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code types.ErrorCode
	}{
		{"empty body", ``, types.ErrCodeValidationInvalidEvent},
		{"not json", `{not json`, types.ErrCodeParseFeedback},
		{"missing type", `{"mail":{"messageId":"m"}}`, types.ErrCodeValidationMissingField},
		{"bounce without details", `{"notificationType":"Bounce","mail":{"messageId":"m"}}`, types.ErrCodeValidationMissingField},
		{"complaint without details", `{"notificationType":"Complaint","mail":{"messageId":"m"}}`, types.ErrCodeValidationMissingField},
		{"bounce missing timestamp", `{"notificationType":"Bounce","bounce":{"bounceType":"Permanent","bouncedRecipients":[]}}`, types.ErrCodeValidationInvalidTime},
		{"complaint bad timestamp", `{"notificationType":"Complaint","complaint":{"complainedRecipients":[],"timestamp":"yesterday"}}`, types.ErrCodeValidationInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseNotification([]byte(tt.body))
			assert.Nil(t, n)
			assertCode(t, err, tt.code)
		})
	}
}

func TestParseSNSEnvelope(t *testing.T) {
	body := buildSNSMessage(t, SESNotification{
		NotificationType: "Bounce",
		Bounce: &SESBounce{
			BounceType:        "Permanent",
			BounceSubType:     "NoEmail",
			BouncedRecipients: []SESBouncedRecipient{{EmailAddress: "bad@example.com"}},
			Timestamp:         "2026-02-07T10:30:00Z",
		},
		Mail: SESMail{MessageId: "ses-1"},
	})

	n, err := ParseSNSEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad@example.com"}, n.(BounceNotification).Recipients)
}

func TestParseSNSEnvelope_Errors(t *testing.T) {
	_, err := ParseSNSEnvelope(nil)
	assertCode(t, err, types.ErrCodeValidationInvalidEvent)

	_, err = ParseSNSEnvelope([]byte(`[`))
	assertCode(t, err, types.ErrCodeParseFeedback)

	_, err = ParseSNSEnvelope([]byte(`{"Type":"SubscriptionConfirmation","Message":"confirm"}`))
	assertCode(t, err, types.ErrCodeValidationUnknownFeedback)

	_, err = ParseSNSEnvelope([]byte(`{"Type":"Notification","Message":""}`))
	assertCode(t, err, types.ErrCodeValidationMissingField)
}

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2026, 2, 7, 10, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2026-02-07T10:30:00Z",
		"2026-02-07T10:30:00.000Z",
		"2026-02-07T12:30:00+02:00",
	} {
		got, err := parseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "%s parsed to %s", raw, got)
		assert.Equal(t, time.UTC, got.Location())
	}
}
