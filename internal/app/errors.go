// Package app wires the configuration, the mail transport and the Mailer.
package app

import "errors"

// Static errors for wrapping.
var (
	ErrBodyFile = errors.New("cannot read body file")
)
