// Package model defines the core domain types for wirechat.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxUsernameLength = 32

var ErrUsernameEmpty = errors.New("username must not be empty")
var ErrUsernameTooLong = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)

// SessionState is the authentication state of a connection. The state machine
// has exactly two states: every connection starts Anonymous and may transition
// once to Authenticated via a successful LOGIN. There is no logout.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the server-side state for one live connection.
//
// ID is an opaque handle identifying the underlying connection; it keys the
// registry and is never exposed to other clients. Username is set exactly
// once, at the Anonymous -> Authenticated transition, and is immutable
// afterwards, which is what makes it safe to read during broadcast fan-out
// without holding the registry lock. State and LastActivityAt are owned by
// the connection's own goroutine.
type Session struct {
	ID             uuid.UUID
	Username       string
	State          SessionState
	LastActivityAt time.Time
}

// NewSession creates an anonymous session for a freshly accepted connection.
func NewSession() *Session {
	return &Session{
		ID:             uuid.New(),
		State:          StateAnonymous,
		LastActivityAt: time.Now(),
	}
}

// Authenticated reports whether the session has completed LOGIN.
func (s *Session) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Touch records inbound activity of any kind.
func (s *Session) Touch() {
	s.LastActivityAt = time.Now()
}

// ValidateUsername checks that a requested username is non-empty after
// trimming and within the length cap. Uniqueness is the registry's concern,
// not validation's.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}
