// Package email consumes SES delivery feedback. It parses the notifications
// SES publishes through SNS, classifies bounces and complaints into
// suppression windows, and records them in the suppression ledger.
package email

import (
	"errors"

	"wxrmessenger/internal/types"
)

// IsBlocklistError reports whether err is the ErrCodeEmailBlocked AppError the
// SES client returns when the recipient is on the account suppression list.
func IsBlocklistError(err error) bool {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Code == types.ErrCodeEmailBlocked
	}
	return false
}
