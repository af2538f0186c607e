package email

import (
	"encoding/json"
	"fmt"
	"time"

	"wxrmessenger/internal/types"
)

// NotificationType is the discriminator SES puts on every feedback
// notification.
type NotificationType string

const (
	TypeBounce           NotificationType = "Bounce"
	TypeComplaint        NotificationType = "Complaint"
	TypeDelivery         NotificationType = "Delivery"
	TypeSend             NotificationType = "Send"
	TypeReject           NotificationType = "Reject"
	TypeOpen             NotificationType = "Open"
	TypeClick            NotificationType = "Click"
	TypeRenderingFailure NotificationType = "Rendering Failure"
	TypeDeliveryDelay    NotificationType = "DeliveryDelay"
	TypeSubscription     NotificationType = "Subscription"
)

// BounceType is the SES top-level bounce classification.
type BounceType string

const (
	BouncePermanent    BounceType = "Permanent"
	BounceTransient    BounceType = "Transient"
	BounceUndetermined BounceType = "Undetermined"
)

// FeedbackNotification is one parsed SES feedback notification. The set of
// implementations is closed to this package.
type FeedbackNotification interface {
	Type() NotificationType
	// MessageID is the SES id of the message the feedback is about.
	MessageID() string
	feedback()
}

type notificationBase struct {
	MailMessageID string
}

func (b notificationBase) MessageID() string { return b.MailMessageID }

func (notificationBase) feedback() {}

// BounceNotification reports recipients whose mailbox rejected delivery.
type BounceNotification struct {
	notificationBase
	BounceType    BounceType
	BounceSubType string
	Recipients    []string
	Timestamp     time.Time
	FeedbackID    string
}

// ComplaintNotification reports recipients who marked a message as spam.
type ComplaintNotification struct {
	notificationBase
	FeedbackType string
	Recipients   []string
	Timestamp    time.Time
	FeedbackID   string
}

type DeliveryNotification struct {
	notificationBase
	Recipients []string
}

type SendNotification struct {
	notificationBase
}

type RejectNotification struct {
	notificationBase
	Reason string
}

type OpenNotification struct {
	notificationBase
}

type ClickNotification struct {
	notificationBase
	Link string
}

type RenderingFailureNotification struct {
	notificationBase
	TemplateName string
	ErrorMessage string
}

type DeliveryDelayNotification struct {
	notificationBase
	DelayType string
}

type SubscriptionNotification struct {
	notificationBase
}

// UnknownNotification carries a discriminator this package does not
// recognize. It is never acted on.
type UnknownNotification struct {
	notificationBase
	RawType string
}

func (BounceNotification) Type() NotificationType           { return TypeBounce }
func (ComplaintNotification) Type() NotificationType        { return TypeComplaint }
func (DeliveryNotification) Type() NotificationType         { return TypeDelivery }
func (SendNotification) Type() NotificationType             { return TypeSend }
func (RejectNotification) Type() NotificationType           { return TypeReject }
func (OpenNotification) Type() NotificationType             { return TypeOpen }
func (ClickNotification) Type() NotificationType            { return TypeClick }
func (RenderingFailureNotification) Type() NotificationType { return TypeRenderingFailure }
func (DeliveryDelayNotification) Type() NotificationType    { return TypeDeliveryDelay }
func (SubscriptionNotification) Type() NotificationType     { return TypeSubscription }
func (u UnknownNotification) Type() NotificationType        { return NotificationType(u.RawType) }

// SNSNotification is the envelope SNS posts to HTTP subscribers. Lambda
// subscribers receive the same fields already unpacked into events.SNSEvent.
type SNSNotification struct {
	Type      string `json:"Type"`
	MessageId string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// SESNotification is the JSON body SES publishes. Identity notifications
// carry notificationType; configuration-set event publishing uses eventType.
type SESNotification struct {
	NotificationType string               `json:"notificationType,omitempty"`
	EventType        string               `json:"eventType,omitempty"`
	Mail             SESMail              `json:"mail"`
	Bounce           *SESBounce           `json:"bounce,omitempty"`
	Complaint        *SESComplaint        `json:"complaint,omitempty"`
	Delivery         *SESDelivery         `json:"delivery,omitempty"`
	Reject           *SESReject           `json:"reject,omitempty"`
	Click            *SESClick            `json:"click,omitempty"`
	Failure          *SESRenderingFailure `json:"failure,omitempty"`
	DeliveryDelay    *SESDeliveryDelay    `json:"deliveryDelay,omitempty"`
}

type SESMail struct {
	MessageId   string   `json:"messageId"`
	Source      string   `json:"source,omitempty"`
	Destination []string `json:"destination,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

type SESBounce struct {
	BounceType        string                `json:"bounceType"`
	BounceSubType     string                `json:"bounceSubType"`
	BouncedRecipients []SESBouncedRecipient `json:"bouncedRecipients"`
	Timestamp         string                `json:"timestamp"`
	FeedbackId        string                `json:"feedbackId,omitempty"`
}

type SESBouncedRecipient struct {
	EmailAddress   string `json:"emailAddress"`
	Action         string `json:"action,omitempty"`
	Status         string `json:"status,omitempty"`
	DiagnosticCode string `json:"diagnosticCode,omitempty"`
}

type SESComplaint struct {
	ComplainedRecipients  []SESComplainedRecipient `json:"complainedRecipients"`
	ComplaintFeedbackType string                   `json:"complaintFeedbackType,omitempty"`
	Timestamp             string                   `json:"timestamp"`
	FeedbackId            string                   `json:"feedbackId,omitempty"`
}

type SESComplainedRecipient struct {
	EmailAddress string `json:"emailAddress"`
}

type SESDelivery struct {
	Recipients []string `json:"recipients"`
}

type SESReject struct {
	Reason string `json:"reason"`
}

type SESClick struct {
	Link string `json:"link"`
}

type SESRenderingFailure struct {
	TemplateName string `json:"templateName"`
	ErrorMessage string `json:"errorMessage"`
}

type SESDeliveryDelay struct {
	DelayType string `json:"delayType"`
}

// ParseNotification decodes an SES notification body, the string SNS
// carries in its Message field.
//
// Malformed JSON is a parse error. A Bounce or Complaint without its detail
// object or with an unusable timestamp is a validation error: those two
// types drive suppression and must not be guessed at.
func ParseNotification(body []byte) (FeedbackNotification, error) {
	if len(body) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidEvent, "sns feedback: empty notification body", nil)
	}

	var ses SESNotification
	if err := json.Unmarshal(body, &ses); err != nil {
		return nil, types.NewAppError(types.ErrCodeParseFeedback, "sns feedback: failed to parse SES notification", err)
	}

	kind := ses.NotificationType
	if kind == "" {
		kind = ses.EventType
	}
	base := notificationBase{MailMessageID: ses.Mail.MessageId}

	switch NotificationType(kind) {
	case TypeBounce:
		return parseBounce(base, ses.Bounce)
	case TypeComplaint:
		return parseComplaint(base, ses.Complaint)
	case TypeDelivery:
		n := DeliveryNotification{notificationBase: base}
		if ses.Delivery != nil {
			n.Recipients = ses.Delivery.Recipients
		}
		return n, nil
	case TypeSend:
		return SendNotification{notificationBase: base}, nil
	case TypeReject:
		n := RejectNotification{notificationBase: base}
		if ses.Reject != nil {
			n.Reason = ses.Reject.Reason
		}
		return n, nil
	case TypeOpen:
		return OpenNotification{notificationBase: base}, nil
	case TypeClick:
		n := ClickNotification{notificationBase: base}
		if ses.Click != nil {
			n.Link = ses.Click.Link
		}
		return n, nil
	case TypeRenderingFailure, "RenderingFailure":
		n := RenderingFailureNotification{notificationBase: base}
		if ses.Failure != nil {
			n.TemplateName = ses.Failure.TemplateName
			n.ErrorMessage = ses.Failure.ErrorMessage
		}
		return n, nil
	case TypeDeliveryDelay:
		n := DeliveryDelayNotification{notificationBase: base}
		if ses.DeliveryDelay != nil {
			n.DelayType = ses.DeliveryDelay.DelayType
		}
		return n, nil
	case TypeSubscription:
		return SubscriptionNotification{notificationBase: base}, nil
	case "":
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "sns feedback: notification has no type", nil)
	default:
		return UnknownNotification{notificationBase: base, RawType: kind}, nil
	}
}

// ParseSNSEnvelope unwraps an SNS HTTP delivery and parses the SES
// notification inside it.
func ParseSNSEnvelope(body []byte) (FeedbackNotification, error) {
	if len(body) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidEvent, "sns feedback: empty SNS body", nil)
	}

	var env SNSNotification
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, types.NewAppError(types.ErrCodeParseFeedback, "sns feedback: failed to parse SNS envelope", err)
	}
	if env.Type != "" && env.Type != "Notification" {
		return nil, types.NewAppError(types.ErrCodeValidationUnknownFeedback,
			fmt.Sprintf("sns feedback: unsupported SNS message type %q", env.Type), nil)
	}
	if env.Message == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "sns feedback: SNS Message field is empty", nil)
	}
	return ParseNotification([]byte(env.Message))
}

func parseBounce(base notificationBase, b *SESBounce) (FeedbackNotification, error) {
	if b == nil {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "sns feedback: bounce notification missing bounce details", nil)
	}
	ts, err := parseTimestamp(b.Timestamp)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(b.BouncedRecipients))
	for _, r := range b.BouncedRecipients {
		if r.EmailAddress != "" {
			recipients = append(recipients, r.EmailAddress)
		}
	}

	return BounceNotification{
		notificationBase: base,
		BounceType:       BounceType(b.BounceType),
		BounceSubType:    b.BounceSubType,
		Recipients:       recipients,
		Timestamp:        ts,
		FeedbackID:       b.FeedbackId,
	}, nil
}

func parseComplaint(base notificationBase, c *SESComplaint) (FeedbackNotification, error) {
	if c == nil {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "sns feedback: complaint notification missing complaint details", nil)
	}
	ts, err := parseTimestamp(c.Timestamp)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(c.ComplainedRecipients))
	for _, r := range c.ComplainedRecipients {
		if r.EmailAddress != "" {
			recipients = append(recipients, r.EmailAddress)
		}
	}

	return ComplaintNotification{
		notificationBase: base,
		FeedbackType:     c.ComplaintFeedbackType,
		Recipients:       recipients,
		Timestamp:        ts,
		FeedbackID:       c.FeedbackId,
	}, nil
}

// parseTimestamp accepts RFC3339 with or without fractional seconds, plus
// the millisecond layout SES uses in older payloads.
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, types.NewAppError(types.ErrCodeValidationInvalidTime, "sns feedback: event timestamp is missing", nil)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05.000Z0700", raw)
		if err != nil {
			return time.Time{}, types.NewAppError(types.ErrCodeValidationInvalidTime,
				fmt.Sprintf("sns feedback: unparseable event timestamp %q", raw), err)
		}
	}
	return t.UTC(), nil
}
