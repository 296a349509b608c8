package mailgunservice

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/sirupsen/logrus"
)

// Config holds the Mailgun account settings. APIBase is optional and selects
// the region, e.g. https://api.eu.mailgun.net/v3.
type Config struct {
	Domain        string
	PrivateAPIKey string
	APIBase       string
}

type mailgunService struct {
	mg  *mailgun.MailgunImpl
	log *logrus.Logger
}

// NewMailgunService creates a new Mailgun service instance.
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewMailgunService(cfg Config, log *logrus.Logger) (mailservice.MailSender, error) {
	if !isMailGunConfigured(cfg.Domain, cfg.PrivateAPIKey) {
		return nil, fmt.Errorf("%w", ErrServiceNotConfigured)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	mg := mailgun.NewMailgun(cfg.Domain, cfg.PrivateAPIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &mailgunService{mg: mg, log: log}, nil
}

func (m *mailgunService) Send(ctx context.Context, msg mailservice.Message) error {
	message := m.mg.NewMessage(msg.From, msg.Subject, msg.Body, msg.To)
	for _, cc := range msg.Cc {
		message.AddCC(cc)
	}
	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via mailgun: %w", err)
	}
	m.log.WithFields(logrus.Fields{
		"id":   id,
		"resp": resp,
	}).Debugln("mail accepted by mailgun")
	return nil
}

func isMailGunConfigured(domain string, apikey string) bool {
	if domain == "" || apikey == "" {
		return false
	}
	return true
}
