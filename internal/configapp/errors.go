// Package configapp reads the application configuration from a YAML file
// and the environment.
package configapp

import "errors"

// Static errors for wrapping.
var (
	ErrFromEmailMissing    = errors.New("mailconfiguration.from_email is mandatory")
	ErrNoTransport         = errors.New("no mail transport configured (mailgun, smtp or ses)")
	ErrUnknownTransport    = errors.New("unknown mail transport")
	ErrTransportIncomplete = errors.New("mail transport configuration incomplete")
	ErrSMTPPort            = errors.New("SMTP_PORT is not a number")
)
