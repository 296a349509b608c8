// Package mailgunservice sends mail through the Mailgun HTTP API.
package mailgunservice

import "errors"

// ErrServiceNotConfigured is returned when the domain or the private API key
// is empty.
var ErrServiceNotConfigured = errors.New("mailgun transport needs a domain and a private API key")
