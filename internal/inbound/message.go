// Package inbound handles one position-report email end to end: it parses
// the raw message, decides whether to answer it, and sends the forecast
// back as a sequence of short replies.
package inbound

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"wxrmessenger/internal/types"
)

// Header is one raw header field, in message order.
type Header struct {
	Key   string
	Value string
}

// Email is the subset of a parsed inbound message the pipeline uses.
type Email struct {
	// MessageID is the Message-ID header without angle brackets.
	MessageID string
	From      string
	To        string
	Subject   string
	Headers   []Header
	// Text is the first text/plain part, or the text content of the first
	// text/html part when there is no plain part.
	Text string
}

// ParseEmail decodes an RFC 5322 message. Unknown charsets are tolerated;
// anything else go-message rejects is a parse error.
func ParseEmail(raw []byte) (*Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, types.NewAppError(types.ErrCodeParseMessage, "failed to parse email headers", err)
	}
	defer mr.Close()

	email := &Email{}

	fields := mr.Header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		email.Headers = append(email.Headers, Header{Key: fields.Key(), Value: value})
	}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
	}
	if to, err := mr.Header.AddressList("To"); err == nil && len(to) > 0 {
		email.To = to[0].Address
	}
	if id, err := mr.Header.MessageID(); err == nil {
		email.MessageID = id
	}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}

	var html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (p == nil || !(message.IsUnknownCharset(err) || message.IsUnknownEncoding(err))) {
			return nil, types.NewAppError(types.ErrCodeParseMessage, "failed to read email body", err)
		}

		var ct string
		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ = h.ContentType()
		case *mail.AttachmentHeader:
			// go-message files parts without a Content-Type as attachments.
			if ct, _, _ = h.ContentType(); ct != "" {
				continue
			}
		default:
			continue
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeParseMessage, "failed to read email part", err)
		}

		switch {
		case (ct == "text/plain" || ct == "") && email.Text == "":
			email.Text = string(body)
		case ct == "text/html" && html == "":
			html = string(body)
		}
	}

	if email.Text == "" && html != "" {
		email.Text = htmlText(html)
	}
	return email, nil
}

// htmlText flattens an HTML body to its text content. Block boundaries are
// kept as newlines so "Latitude: x" and "Longitude: y" stay separable.
func htmlText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, tr, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text()
}
