package service

import (
	"errors"

	"examcoach/internal/session"
)

var (
	// ErrGateLocked is returned for every login attempt when no access
	// password is configured: the gate fails closed rather than open.
	ErrGateLocked = errors.New("access password is not configured")

	ErrInvalidPassword = errors.New("incorrect password")
)

// GateService checks the single shared access password and issues
// authenticated sessions. There is no lockout and no hashing; the
// submitted value is compared directly against configuration.
type GateService struct {
	password string
	sessions *session.Store
}

// NewGateService creates a gate over the configured password
func NewGateService(password string, sessions *session.Store) *GateService {
	return &GateService{
		password: password,
		sessions: sessions,
	}
}

// Login validates the submitted password. On match it creates an
// authenticated session; on mismatch nothing changes and the attempt can
// be retried indefinitely.
func (s *GateService) Login(password string) (*session.Session, error) {
	if s.password == "" {
		return nil, ErrGateLocked
	}
	if password != s.password {
		return nil, ErrInvalidPassword
	}

	sess := s.sessions.Create()
	sess.Authenticated = true
	return sess, nil
}

// Logout discards the session
func (s *GateService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Session resolves a session ID to a live session, nil if unknown or expired
func (s *GateService) Session(sessionID string) *session.Session {
	return s.sessions.Get(sessionID)
}
