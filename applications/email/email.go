// Package email sends confirmation mail through one configured transport.
package email

import (
	"context"
	"errors"
	"path/filepath"

	"gopkg.in/gomail.v2"
)

// ErrDelivery wraps any transport failure.
var ErrDelivery = errors.New("email delivery failed")

// Attachment points at a file on disk; Name overrides the filename shown to the recipient.
type Attachment struct {
	Name string
	Path string
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender is a mail transport. Implementations are built once at startup and
// shared across requests.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
	// Verify checks that the transport can reach its backend.
	Verify(ctx context.Context) error
}

// Delivers reports whether s hands mail to a real recipient. Transports that
// only record the message implement Delivers() and return false.
func Delivers(s Sender) bool {
	if d, ok := s.(interface{ Delivers() bool }); ok {
		return d.Delivers()
	}
	return true
}

// buildMIME renders msg as a multipart MIME message.
func buildMIME(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	if from != "" {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	for _, a := range msg.Attachments {
		name := a.Name
		if name == "" {
			name = filepath.Base(a.Path)
		}
		m.Attach(a.Path, gomail.Rename(name))
	}
	return m
}
