// Package mailx sends transactional email. Senders are small and composable:
// a transport (SMTP or log) is usually wrapped in a RetryingSender.
package mailx

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidMessage = errors.New("mailx: message needs a recipient and a body")

// Message is one email with an HTML and a plain-text alternative.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
	Text    string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || (m.HTML == "" && m.Text == "") {
		return ErrInvalidMessage
	}
	if strings.ContainsAny(m.To+m.From+m.Subject, "\r\n") {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
