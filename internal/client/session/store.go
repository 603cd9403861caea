// Package session owns the client's authenticated identity: a single store
// written only by login, two-factor verification, and logout, and read by
// route guards and any view needing the current account.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// State is a point-in-time snapshot of the session.
type State struct {
	User            models.Account
	ExpiresAt       string
	IsAuthenticated bool
}

// Store holds the active session. The zero value is logged out.
type Store struct {
	mu        sync.RWMutex
	user      models.Account
	expiresAt string
	log       logging.Logger
}

func NewStore(log logging.Logger) *Store {
	return &Store{log: log.With("component", "session")}
}

// Login installs the account as the active session.
func (s *Store) Login(ctx context.Context, account models.Account, expiresAt string) {
	s.mu.Lock()
	s.user = account
	s.expiresAt = expiresAt
	s.mu.Unlock()
	s.log.Info(ctx, "session established", "kind", string(account.Kind()), "uuid", account.AccountUUID())
}

// Clear wipes the session unconditionally. Safe to call when already logged
// out.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.expiresAt = ""
	s.mu.Unlock()
	s.log.Info(ctx, "session cleared")
}

// User returns the active account, or nil when logged out.
func (s *Store) User() models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Snapshot returns the full session state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{User: s.user, ExpiresAt: s.expiresAt, IsAuthenticated: s.user != nil}
}

// ExpiryFromToken recovers the expiry claim from the server-issued session
// token without verifying its signature. The server owns the cookie; the
// client only reads the timestamp for display and refresh heuristics.
func ExpiryFromToken(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("session token carries no expiry: %w", err)
	}
	return exp.Time, nil
}
