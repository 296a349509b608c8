// Package smtpservice provides SMTP email service implementation.
package smtpservice

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

// Config holds the SMTP relay settings.
type Config struct {
	Login    string
	Password string
	// Server is host:port.
	Server string
	// TLS upgrades the connection with STARTTLS before authenticating.
	TLS bool
	// InsecureSkipVerify is only meant for relays with self-signed certs.
	InsecureSkipVerify bool
}

type smtpService struct {
	cfg  Config
	host string
	log  *logrus.Logger
}

// envelope holds the parsed addresses. MAIL FROM and RCPT TO use the bare
// addresses, the headers keep the display names.
type envelope struct {
	from *mail.Address
	to   *mail.Address
	cc   []*mail.Address
}

func (e envelope) rcpts() []string {
	rcpts := make([]string, 0, 1+len(e.cc))
	rcpts = append(rcpts, e.to.Address)
	for _, a := range e.cc {
		rcpts = append(rcpts, a.Address)
	}
	return rcpts
}

// NewSMTPService creates a new SMTP service instance.
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewSMTPService(cfg Config, log *logrus.Logger) (mailservice.MailSender, error) {
	host, err := isSMTPConfigured(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &smtpService{cfg: cfg, host: host, log: log}, nil
}

// Send submits msg to the relay. Every address is checked before a
// connection is opened.
func (s *smtpService) Send(ctx context.Context, msg mailservice.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := buildEnvelope(msg)
	if err != nil {
		return err
	}
	c, err := s.establishConnection(ctx)
	if err != nil {
		return err
	}
	defer s.closeConnection(c)
	if err := s.authenticate(c); err != nil {
		return err
	}
	return s.sendEmailData(c, env, msg)
}

func buildEnvelope(msg mailservice.Message) (envelope, error) {
	var env envelope
	var err error
	if env.from, err = parseAddress(msg.From); err != nil {
		return envelope{}, err
	}
	if env.to, err = parseAddress(msg.To); err != nil {
		return envelope{}, err
	}
	for _, cc := range msg.Cc {
		addr, err := parseAddress(cc)
		if err != nil {
			return envelope{}, err
		}
		env.cc = append(env.cc, addr)
	}
	return env, nil
}

func parseAddress(address string) (*mail.Address, error) {
	a, err := mail.ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, err)
	}
	return a, nil
}

// buildEmailMessage composes a text/plain MIME message. Display names are
// encoded on their own so the addresses stay readable. The Cc header is only
// written when there are CC recipients.
func buildEmailMessage(msg mailservice.Message, env envelope) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", env.from.Address, env.from.Name)
	m.SetAddressHeader("To", env.to.Address, env.to.Name)
	if len(env.cc) > 0 {
		cc := make([]string, 0, len(env.cc))
		for _, a := range env.cc {
			cc = append(cc, m.FormatAddress(a.Address, a.Name))
		}
		m.SetHeader("Cc", cc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-Id", messageID(env.from.Address))
	m.SetBody("text/plain", msg.Body)
	return m
}

func messageID(fromAddress string) string {
	domain := "localhost"
	if i := strings.LastIndex(fromAddress, "@"); i >= 0 && i < len(fromAddress)-1 {
		domain = fromAddress[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

func (s *smtpService) establishConnection(ctx context.Context) (*smtp.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open SMTP session: %w", err)
	}
	// go-smtp resets the connection deadline before every command.
	if deadline, ok := ctx.Deadline(); ok {
		c.CommandTimeout = time.Until(deadline)
		c.SubmissionTimeout = time.Until(deadline)
	}
	if s.cfg.TLS {
		if err := s.startTLS(c); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (s *smtpService) startTLS(c *smtp.Client) error {
	tlsconfig := &tls.Config{
		//nolint:gosec // opt-in for self-signed relays
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
		ServerName:         s.host,
		MinVersion:         tls.VersionTLS12,
	}
	if err := c.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	return nil
}

func (s *smtpService) closeConnection(c *smtp.Client) {
	if err := c.Quit(); err != nil {
		s.log.Debugln("smtp quit:", err.Error())
		_ = c.Close()
	}
}

func (s *smtpService) authenticate(c *smtp.Client) error {
	if ok, _ := c.Extension("AUTH"); !ok {
		return fmt.Errorf("%w", ErrNoAuth)
	}
	auth := sasl.NewPlainClient("", s.cfg.Login, s.cfg.Password)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	return nil
}

func (s *smtpService) sendEmailData(c *smtp.Client, env envelope, msg mailservice.Message) error {
	if err := c.Mail(env.from.Address, nil); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	rcpts := env.rcpts()
	for _, rcpt := range rcpts {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := buildEmailMessage(msg, env).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"server": s.cfg.Server,
		"rcpts":  len(rcpts),
	}).Debugln("mail accepted by smtp server")
	return nil
}

func isSMTPConfigured(cfg Config) (string, error) {
	if cfg.Login == "" || cfg.Password == "" || cfg.Server == "" {
		return "", fmt.Errorf("%w", ErrSMTPConfigMissing)
	}
	host, port, err := net.SplitHostPort(cfg.Server)
	if err != nil {
		return "", fmt.Errorf("%w", ErrSMTPServerFormat)
	}
	if host == "" || port == "" {
		return "", fmt.Errorf("%w", ErrSMTPServerFormat)
	}
	return host, nil
}
