// Package smtptest runs an in-process SMTP server that keeps every delivered
// message in memory, so transport tests can inspect what went over the wire.
package smtptest

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/emersion/go-smtp"
	"github.com/sirupsen/logrus"
)

// Login and Password are the only credentials the server accepts.
const (
	Login    = "myuser"
	Password = "mypassword"
)

var errBadCredentials = errors.New("invalid username or password")

// Envelope is one message as received by the server: the SMTP envelope plus
// the raw DATA payload.
type Envelope struct {
	Created time.Time
	From    string
	Rcpts   []string
	Data    string
}

// backend implements smtp.Backend. It's a thin authentication wrapper
// for an inMemoryStore.
type backend struct {
	store *inMemoryStore
}

// Login implements smtp.Backend.
func (be *backend) Login(_ *smtp.ConnectionState, username string, password string) (smtp.Session, error) {
	if username != Login || password != Password {
		return nil, errBadCredentials
	}
	return &session{store: be.store}, nil
}

// AnonymousLogin implements smtp.Backend. Not supported since we want to
// enforce AUTH.
func (be *backend) AnonymousLogin(_ *smtp.ConnectionState) (smtp.Session, error) {
	return nil, smtp.ErrAuthUnsupported
}

// session implements smtp.Session for a single authenticated connection.
type session struct {
	store *inMemoryStore
	from  string
	rcpts []string
}

func (s *session) Reset() {
	s.from = ""
	s.rcpts = nil
}

func (s *session) Logout() error { return nil }

func (s *session) Mail(from string, _ smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *session) Rcpt(to string) error {
	s.rcpts = append(s.rcpts, to)
	return nil
}

// Data stores the message in memory for retrieval at the end of the test.
func (s *session) Data(r io.Reader) error {
	// doubtful we'll get an email this big, but we need a limit
	var maxEmailSize int64 = 10 * units.MiB
	buf, err := io.ReadAll(io.LimitReader(r, maxEmailSize))
	if err != nil {
		return err
	}

	str := &strings.Builder{}
	if _, err := str.Write(buf); err != nil {
		return err
	}
	s.store.save(Envelope{
		Created: time.Now(),
		From:    s.from,
		Rcpts:   append([]string(nil), s.rcpts...),
		Data:    str.String(),
	})
	return nil
}

// inMemoryStore is goroutine safe since the server handles each connection
// on its own goroutine.
type inMemoryStore struct {
	mu       sync.Mutex
	messages []Envelope
}

func (es *inMemoryStore) save(e Envelope) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.messages = append(es.messages, e)
}

// Server is an SMTP server running in the test process. Create it with
// Start and stop it with Close.
type Server struct {
	srv    *smtp.Server
	ln     net.Listener
	store  *inMemoryStore
	served chan struct{}
}

// Start listens on a random loopback port and serves in the background.
// AUTH is allowed over plain TCP since the server only listens on loopback.
func Start() (*Server, error) {
	store := &inMemoryStore{}
	srv := smtp.NewServer(&backend{store: store})
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	srv.AuthDisabled = false
	// Strict enforces <address> syntax in MAIL and RCPT commands.
	srv.Strict = true
	srv.ErrorLog = logrus.StandardLogger()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{srv: srv, ln: ln, store: store, served: make(chan struct{})}
	go func() {
		defer close(s.served)
		_ = srv.Serve(ln)
	}()
	return s, nil
}

// Close shuts down the server. It waits for Serve to return before closing
// the open connections, so it is safe right after Start. A closed Server
// can't be restarted.
func (s *Server) Close() {
	_ = s.ln.Close()
	<-s.served
	_ = s.srv.Close()
}

// Address returns the host:port of the server.
func (s *Server) Address() string {
	return s.ln.Addr().String()
}

// Messages returns a copy of every message received so far.
func (s *Server) Messages() []Envelope {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return append([]Envelope(nil), s.store.messages...)
}
