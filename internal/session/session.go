// Package session holds the signed-in operator for the console. A Store is
// created once at start-up and handed to everything that needs the actor.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Info describes an authenticated operator.
type Info struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Info, error)
}

// Store keeps the current session. The zero session means signed out.
type Store struct {
	auth Authenticator
	now  func() time.Time

	mu      sync.RWMutex
	current *Info
}

// NewStore creates an empty session store.
func NewStore(auth Authenticator) *Store {
	return &Store{auth: auth, now: time.Now}
}

// SignIn authenticates and replaces the current session.
func (s *Store) SignIn(ctx context.Context, email, password string) (Info, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Info{}, errors.New("email and password are required")
	}
	info, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	s.current = &info
	s.mu.Unlock()
	return info, nil
}

// SignOut forgets the current session.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the session if one exists and has not expired.
func (s *Store) Current() (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Info{}, false
	}
	if !s.current.ExpiresAt.IsZero() && !s.now().Before(s.current.ExpiresAt) {
		return Info{}, false
	}
	return *s.current, true
}

// Actor returns the user id that mutations are attributed to, or "".
func (s *Store) Actor() string {
	info, _ := s.Current()
	return info.UserID
}

// Token returns the bearer token of the current session, or "".
func (s *Store) Token() string {
	info, _ := s.Current()
	return info.Token
}
