// Package mailservice provides email service interfaces and implementations.
package mailservice

import "context"

// Message is a single plain-text email as handed to a transport.
// It is built per call and never shared between sends.
type Message struct {
	From    string
	To      string
	Cc      []string
	Subject string
	Body    string
}

// MailSender defines the interface for sending emails.
type MailSender interface {
	Send(ctx context.Context, msg Message) error
}
