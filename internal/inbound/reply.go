package inbound

import (
	"bytes"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"wxrmessenger/internal/types"
)

// Reply is one outbound segment.
type Reply struct {
	To   string
	From string
	// InReplyTo is the original Message-ID without angle brackets. Threading
	// headers are omitted when it is empty.
	InReplyTo string
	Body      string
	Date      time.Time
}

// Compose renders the reply as an RFC 5322 message. The subject is left
// empty since receiving devices count it against the message budget.
func (r Reply) Compose() ([]byte, error) {
	var h mail.Header
	h.SetDate(r.Date)
	h.SetAddressList("From", []*mail.Address{{Address: r.From}})
	h.SetAddressList("To", []*mail.Address{{Address: r.To}})
	h.SetSubject("")
	if r.InReplyTo != "" {
		h.SetMsgIDList("In-Reply-To", []string{r.InReplyTo})
		h.SetMsgIDList("References", []string{r.InReplyTo})
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "8bit")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to start reply", err)
	}
	body := strings.ReplaceAll(strings.ReplaceAll(r.Body, "\r\n", "\n"), "\n", "\r\n")
	if _, err := w.Write([]byte(body)); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to write reply body", err)
	}
	if err := w.Close(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to finish reply", err)
	}
	return buf.Bytes(), nil
}
