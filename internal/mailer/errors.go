package mailer

import (
	"errors"
	"fmt"
)

// Static errors for wrapping.
var (
	ErrMail             = errors.New("mail send failed")
	ErrFromEmailMissing = errors.New("from email is mandatory")
	ErrNoMailSender     = errors.New("no mail sender configured")
)

// MailError is the only error returned by Mailer.Send. Cause keeps the
// transport failure for diagnostics.
type MailError struct {
	Cause error
}

func (e *MailError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMail, e.Cause)
}

func (e *MailError) Unwrap() error {
	return e.Cause
}

// Is reports ErrMail as a match so callers can test for the error kind
// without a type assertion.
func (e *MailError) Is(target error) bool {
	return target == ErrMail
}
