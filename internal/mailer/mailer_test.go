package mailer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sgaunet/mailsend/internal/logger"
	"github.com/sgaunet/mailsend/internal/mailer"
	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender keeps every message it is asked to send.
type recordingSender struct {
	mu       sync.Mutex
	messages []mailservice.Message
}

func (r *recordingSender) Send(_ context.Context, msg mailservice.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingSender) last(t *testing.T) mailservice.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.messages, "no message reached the sender")
	return r.messages[len(r.messages)-1]
}

type failingSender struct {
	err error
}

func (f failingSender) Send(context.Context, mailservice.Message) error {
	return f.err
}

type panickingSender struct {
	value any
}

func (p panickingSender) Send(context.Context, mailservice.Message) error {
	panic(p.value)
}

const fromEmail = "noreply@fitness.example.com"

func newMailer(t *testing.T, sender mailservice.MailSender) *mailer.Mailer {
	t.Helper()
	m, err := mailer.New(mailer.Config{FromEmail: fromEmail}, sender, logger.NoLogger())
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     mailer.Config
		sender  mailservice.MailSender
		wantErr error
	}{
		{
			name:   "valid",
			cfg:    mailer.Config{FromEmail: fromEmail},
			sender: &recordingSender{},
		},
		{
			name:    "missing from email",
			cfg:     mailer.Config{},
			sender:  &recordingSender{},
			wantErr: mailer.ErrFromEmailMissing,
		},
		{
			name:    "missing sender",
			cfg:     mailer.Config{FromEmail: fromEmail},
			wantErr: mailer.ErrNoMailSender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := mailer.New(tt.cfg, tt.sender, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fromEmail, m.FromEmail())
		})
	}
}

func TestSend(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		cc      []string
		subject string
		body    string
	}{
		{
			name:    "no cc",
			to:      "alice@example.com",
			cc:      []string{},
			subject: "Welcome",
			body:    "Hi Alice",
		},
		{
			name:    "one cc",
			to:      "bob@example.com",
			cc:      []string{"carol@example.com"},
			subject: "Invoice",
			body:    "See attached",
		},
		{
			name:    "cc order kept",
			to:      "dave@example.com",
			cc:      []string{"zoe@example.com", "adam@example.com", "mia@example.com"},
			subject: "Membership renewal",
			body:    "Line one\nLine two",
		},
		{
			name:    "nil cc",
			to:      "erin@example.com",
			subject: "",
			body:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSender{}
			m := newMailer(t, rec)

			err := m.Send(context.Background(), tt.to, tt.cc, tt.subject, tt.body)
			require.NoError(t, err)

			got := rec.last(t)
			assert.Equal(t, fromEmail, got.From)
			assert.Equal(t, tt.to, got.To)
			assert.Len(t, got.Cc, len(tt.cc))
			for i := range tt.cc {
				assert.Equal(t, tt.cc[i], got.Cc[i])
			}
			assert.Equal(t, tt.subject, got.Subject)
			assert.Equal(t, tt.body, got.Body)
		})
	}
}

func TestSendCopiesCc(t *testing.T) {
	rec := &recordingSender{}
	m := newMailer(t, rec)

	cc := []string{"carol@example.com"}
	require.NoError(t, m.Send(context.Background(), "bob@example.com", cc, "Invoice", "See attached"))
	cc[0] = "mallory@example.com"

	assert.Equal(t, []string{"carol@example.com"}, rec.last(t).Cc)
}

func TestSendTransportFailure(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:25: connection refused")
	m := newMailer(t, failingSender{err: cause})

	err := m.Send(context.Background(), "alice@example.com", nil, "Welcome", "Hi Alice")
	require.Error(t, err)

	var mailErr *mailer.MailError
	require.ErrorAs(t, err, &mailErr)
	assert.ErrorIs(t, err, mailer.ErrMail)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, mailErr.Cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendTransportPanic(t *testing.T) {
	errRelayGone := errors.New("relay connection reset")

	tests := []struct {
		name      string
		value     any
		wantCause error
		wantText  string
	}{
		{name: "string value", value: "malformed address", wantText: "malformed address"},
		{name: "error value", value: errRelayGone, wantCause: errRelayGone, wantText: "relay connection reset"},
		{name: "wrapped error value", value: fmt.Errorf("dial: %w", errRelayGone), wantCause: errRelayGone, wantText: "dial: relay connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMailer(t, panickingSender{value: tt.value})

			var err error
			assert.NotPanics(t, func() {
				err = m.Send(context.Background(), "alice@example.com", nil, "Welcome", "Hi")
			})
			assert.ErrorIs(t, err, mailer.ErrMail)
			assert.Contains(t, err.Error(), tt.wantText)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestSendConcurrent(t *testing.T) {
	rec := &recordingSender{}
	m := newMailer(t, rec)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Send(context.Background(), "alice@example.com", nil, "Welcome", "Hi Alice"))
		}()
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.messages, n)
}
