package types

import "time"

// SuppressionRecord blocks replies to EmailAddress while Until is in the
// future. The address is stored exactly as reported by the mail provider.
type SuppressionRecord struct {
	EmailAddress string    `json:"email" dynamodbav:"email"`
	Until        time.Time `json:"until" dynamodbav:"until"`
}
