package app

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sgaunet/mailsend/internal/awsauth"
	"github.com/sgaunet/mailsend/internal/configapp"
	"github.com/sgaunet/mailsend/internal/mailer"
	"github.com/sgaunet/mailsend/internal/mailservice"
	logservice "github.com/sgaunet/mailsend/internal/mailservice/logService"
	mailgunservice "github.com/sgaunet/mailsend/internal/mailservice/mailgunService"
	sesservice "github.com/sgaunet/mailsend/internal/mailservice/sesService"
	smtpservice "github.com/sgaunet/mailsend/internal/mailservice/smtpService"
	"github.com/sirupsen/logrus"
)

// Request is one email to send from the configured address.
type Request struct {
	To      string
	Cc      []string
	Subject string
	Body    string
}

type App struct {
	cfg       configapp.AppConfig
	transport string
	awscfg    aws.Config
	mailer    *mailer.Mailer
	appLog    *logrus.Logger
}

// New validates cfg, builds the selected transport and the Mailer on top of it.
func New(ctx context.Context, cfg configapp.AppConfig, log *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport, err := cfg.ResolveTransport()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &App{
		cfg:       cfg,
		transport: transport,
		appLog:    log,
	}
	sender, err := a.newMailSender(ctx)
	if err != nil {
		return nil, err
	}
	m, err := mailer.New(mailer.Config{FromEmail: cfg.MailConfig.FromEmail}, sender, log)
	if err != nil {
		return nil, err
	}
	a.mailer = m
	log.WithFields(logrus.Fields{
		"transport": transport,
		"from":      cfg.MailConfig.FromEmail,
	}).Debugln("mailer ready")
	return a, nil
}

//nolint:ireturn
func (a *App) newMailSender(ctx context.Context) (mailservice.MailSender, error) {
	switch a.transport {
	case configapp.TransportMailgun:
		a.appLog.Debugln("Mail with mailgun")
		return mailgunservice.NewMailgunService(mailgunservice.Config{
			Domain:        a.cfg.MailgunConfig.Domain,
			PrivateAPIKey: a.cfg.MailgunConfig.ApiKey,
			APIBase:       a.cfg.MailgunConfig.ApiBase,
		}, a.appLog)
	case configapp.TransportSMTP:
		a.appLog.Debugln("Mail with smtp")
		return smtpservice.NewSMTPService(smtpservice.Config{
			Login:              a.cfg.SmtpConfig.Login,
			Password:           a.cfg.SmtpConfig.Password,
			Server:             a.cfg.SmtpAddress(),
			TLS:                a.cfg.SmtpConfig.Tls,
			InsecureSkipVerify: a.cfg.SmtpConfig.InsecureSkipVerify,
		}, a.appLog)
	case configapp.TransportSES:
		a.appLog.Debugln("Mail with ses")
		awscfg, err := awsauth.LoadConfig(ctx, a.cfg.SesConfig.Region, a.cfg.SesConfig.Profile)
		if err != nil {
			return nil, err
		}
		a.awscfg = awscfg
		return sesservice.NewSESService(awscfg, a.appLog)
	case configapp.TransportLog:
		return logservice.NewLogService(a.appLog), nil
	}
	return nil, fmt.Errorf("%w: %q", configapp.ErrUnknownTransport, a.transport)
}

// Transport returns the name of the transport in use.
func (a *App) Transport() string {
	return a.transport
}

// LogIdentity logs the AWS identity that SES mail will be sent as. It does
// nothing for other transports.
func (a *App) LogIdentity(ctx context.Context) error {
	if a.transport != configapp.TransportSES {
		return nil
	}
	id, err := awsauth.CallerIdentity(ctx, awsauth.NewSTSClient(a.awscfg))
	if err != nil {
		return err
	}
	a.appLog.Infoln(id.String())
	return nil
}

// Send sends req. The returned error, if any, is a *mailer.MailError.
func (a *App) Send(ctx context.Context, req Request) error {
	return a.mailer.Send(ctx, req.To, req.Cc, req.Subject, req.Body)
}

// SendFile sends req with the content of the file as body.
func (a *App) SendFile(ctx context.Context, req Request, filename string) error {
	body, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBodyFile, err)
	}
	req.Body = string(body)
	return a.Send(ctx, req)
}
