package configapp

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Transport names accepted in the "transport" key.
const (
	TransportSMTP    = "smtp"
	TransportMailgun = "mailgun"
	TransportSES     = "ses"
	TransportLog     = "log"
)

type AppConfig struct {
	Transport     string            `yaml:"transport"`
	SmtpConfig    SmtpConfig        `yaml:"smtp"`
	MailgunConfig MailGunConfig     `yaml:"mailgun"`
	SesConfig     SesConfig         `yaml:"ses"`
	MailConfig    MailConfiguration `yaml:"mailconfiguration"`
	DebugLevel    string            `yaml:"debuglevel"`
}

type MailConfiguration struct {
	FromEmail string `yaml:"from_email"`
}

type MailGunConfig struct {
	Domain  string `yaml:"domain"`
	ApiKey  string `yaml:"apikey"`
	ApiBase string `yaml:"apibase"`
}

type SmtpConfig struct {
	Server             string `yaml:"server"`
	Port               int    `yaml:"port"`
	Login              string `yaml:"login"`
	Password           string `yaml:"password"`
	Tls                bool   `yaml:"tls"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type SesConfig struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
}

// ReadYamlCnxFile reads the configuration file. Environment variables are
// not applied here, see LoadEnv.
func ReadYamlCnxFile(filename string) (AppConfig, error) {
	var config AppConfig

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("error reading YAML file: %w", err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &config)
	if err != nil {
		return config, fmt.Errorf("error parsing YAML file: %w", err)
	}
	return config, nil
}

// LoadEnv overrides settings with the environment variables that are set.
func (a *AppConfig) LoadEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	setIfPresent(&a.MailConfig.FromEmail, getenv("FROM_EMAIL"))
	setIfPresent(&a.Transport, getenv("MAIL_TRANSPORT"))
	setIfPresent(&a.DebugLevel, getenv("DEBUGLEVEL"))
	setIfPresent(&a.SmtpConfig.Server, getenv("SMTP_SERVER"))
	setIfPresent(&a.SmtpConfig.Login, getenv("SMTP_LOGIN"))
	setIfPresent(&a.SmtpConfig.Password, getenv("SMTP_PASSWORD"))
	setIfPresent(&a.MailgunConfig.Domain, getenv("MAILGUN_DOMAIN"))
	setIfPresent(&a.MailgunConfig.ApiKey, getenv("MAILGUN_APIKEY"))
	setIfPresent(&a.SesConfig.Region, getenv("AWS_REGION"))
	setIfPresent(&a.SesConfig.Profile, getenv("AWS_PROFILE"))
	if p := getenv("SMTP_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrSMTPPort, p)
		}
		a.SmtpConfig.Port = port
	}
	return nil
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (a *AppConfig) IsMailGunConfigured() bool {
	return a.MailgunConfig.ApiKey != "" && a.MailgunConfig.Domain != ""
}

func (a *AppConfig) IsSmtpConfigured() bool {
	return a.SmtpConfig.Login != "" && a.SmtpConfig.Port != 0 && a.SmtpConfig.Password != "" && a.SmtpConfig.Server != ""
}

func (a *AppConfig) IsSesConfigured() bool {
	return a.SesConfig.Region != ""
}

// SmtpAddress returns the relay as host:port.
func (a *AppConfig) SmtpAddress() string {
	return fmt.Sprintf("%s:%d", a.SmtpConfig.Server, a.SmtpConfig.Port)
}

// ResolveTransport returns the transport to use. An explicit "transport"
// key wins; otherwise mailgun, smtp and ses are tried in that order.
func (a *AppConfig) ResolveTransport() (string, error) {
	switch a.Transport {
	case TransportSMTP, TransportMailgun, TransportSES, TransportLog:
		return a.Transport, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransport, a.Transport)
	}
	switch {
	case a.IsMailGunConfigured():
		return TransportMailgun, nil
	case a.IsSmtpConfigured():
		return TransportSMTP, nil
	case a.IsSesConfigured():
		return TransportSES, nil
	}
	return "", fmt.Errorf("%w", ErrNoTransport)
}

// Validate checks that a sender address and a usable transport are set.
func (a *AppConfig) Validate() error {
	if a.MailConfig.FromEmail == "" {
		return fmt.Errorf("%w", ErrFromEmailMissing)
	}
	transport, err := a.ResolveTransport()
	if err != nil {
		return err
	}
	switch transport {
	case TransportMailgun:
		if !a.IsMailGunConfigured() {
			return fmt.Errorf("%w: mailgun needs domain and apikey", ErrTransportIncomplete)
		}
	case TransportSMTP:
		if !a.IsSmtpConfigured() {
			return fmt.Errorf("%w: smtp needs server, port, login and password", ErrTransportIncomplete)
		}
	case TransportSES:
		if !a.IsSesConfigured() {
			return fmt.Errorf("%w: ses needs a region", ErrTransportIncomplete)
		}
	}
	return nil
}
