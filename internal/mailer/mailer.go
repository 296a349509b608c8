// Package mailer sends plain-text emails from the configured sender address
// through a pluggable mail transport.
package mailer

import (
	"context"
	"fmt"

	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/sirupsen/logrus"
)

// Config holds the process-wide mailer settings. It is resolved once at
// startup and never modified afterwards.
type Config struct {
	FromEmail string
}

// Mailer builds messages and hands them to a MailSender.
type Mailer struct {
	cfg    Config
	sender mailservice.MailSender
	log    *logrus.Logger
}

// New creates a Mailer. The sender's own guarantees decide whether Send may be
// called from several goroutines.
func New(cfg Config, sender mailservice.MailSender, log *logrus.Logger) (*Mailer, error) {
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("%w", ErrFromEmailMissing)
	}
	if sender == nil {
		return nil, fmt.Errorf("%w", ErrNoMailSender)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mailer{
		cfg:    cfg,
		sender: sender,
		log:    log,
	}, nil
}

// FromEmail returns the sender address every message is sent from.
func (m *Mailer) FromEmail() string {
	return m.cfg.FromEmail
}

// Send dispatches one plain-text message to `to` with the given CC list.
// It blocks until the transport accepts or rejects the message. Any failure
// is returned as a *MailError.
func (m *Mailer) Send(ctx context.Context, to string, cc []string, subject string, body string) (err error) {
	msg := mailservice.Message{
		From:    m.cfg.FromEmail,
		To:      to,
		Cc:      append([]string(nil), cc...),
		Subject: subject,
		Body:    body,
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &MailError{Cause: fmt.Errorf("transport panic: %w", cause)}
		}
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"to":      to,
				"cc":      len(cc),
				"subject": subject,
			}).Errorln(err.Error())
		}
	}()

	m.log.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"cc":      msg.Cc,
		"subject": msg.Subject,
	}).Debugln("sending mail")

	if err := m.sender.Send(ctx, msg); err != nil {
		return &MailError{Cause: err}
	}
	return nil
}
