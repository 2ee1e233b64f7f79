package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/store"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrExpired     = errors.New("session expired")
)

// Session owns the authenticated user's lifecycle. Token and profile are
// re-read from the persisted store on every access; nothing is trusted to
// stay valid in memory across the session TTL.
type Session struct {
	mu          sync.Mutex
	store       *store.Store
	ttl         time.Duration
	onTerminate func(reason string)
	terminated  bool
	now         func() time.Time
}

// New builds a session over the persisted store. onTerminate fires exactly
// once per login when the session ends for any reason other than an explicit
// Logout call (expiry, 401).
func New(st *store.Store, ttl time.Duration, onTerminate func(reason string)) *Session {
	return &Session{
		store:       st,
		ttl:         ttl,
		onTerminate: onTerminate,
		now:         time.Now,
	}
}

// Login persists the token and profile with the current timestamp.
func (s *Session) Login(token string, profile domain.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveAuth(token, payload, s.now()); err != nil {
		return err
	}
	s.terminated = false
	return nil
}

// Token implements api.TokenSource. Expiry is enforced on every read.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _, loginAt, err := s.store.Auth()
	if errors.Is(err, store.ErrNoAuth) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	if s.now().Sub(loginAt) > s.ttl {
		s.terminateLocked("session expired")
		return "", ErrExpired
	}
	return token, nil
}

// Profile returns the persisted user profile.
func (s *Session) Profile() (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile domain.Profile
	_, payload, _, err := s.store.Auth()
	if errors.Is(err, store.ErrNoAuth) {
		return profile, ErrNotLoggedIn
	}
	if err != nil {
		return profile, err
	}
	if err := json.Unmarshal(payload, &profile); err != nil {
		return profile, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}

// UserID is a convenience for the realtime join event and cache keys.
func (s *Session) UserID() (string, error) {
	profile, err := s.Profile()
	if err != nil {
		return "", err
	}
	return profile.ID, nil
}

// Logout clears persisted auth state without firing the termination
// callback; the user asked for this themselves.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = true
	return s.store.ClearAuth()
}

// HandleUnauthorized is wired to the API client's 401 hook. The backend has
// rejected our token, so the session is over regardless of its age.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminateLocked("unauthorized")
}

func (s *Session) terminateLocked(reason string) {
	if s.terminated {
		return
	}
	s.terminated = true
	if err := s.store.ClearAuth(); err != nil {
		slog.Warn("clear auth state failed", "error", err)
	}
	if s.onTerminate != nil {
		s.onTerminate(reason)
	}
}
