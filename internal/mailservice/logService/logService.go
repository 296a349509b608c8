// Package logservice provides a MailSender that logs emails instead of
// sending them. Useful for development and dry runs.
package logservice

import (
	"context"
	"strings"

	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/sirupsen/logrus"
)

type logService struct {
	log *logrus.Logger
}

// NewLogService creates a new log-based mail sender.
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewLogService(log *logrus.Logger) mailservice.MailSender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &logService{log: log}
}

// Send logs the email at info level and never fails.
func (s *logService) Send(_ context.Context, msg mailservice.Message) error {
	s.log.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"cc":      strings.Join(msg.Cc, ","),
		"subject": msg.Subject,
	}).Infof("EMAIL (dry run - not actually sent)\n%s", msg.Body)
	return nil
}
