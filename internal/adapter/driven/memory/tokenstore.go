// Package memory holds process-lifetime in-memory driven adapters.
package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore holds the field-service access credential for the process
// lifetime. It is seeded from configuration at startup; a refreshed token
// replaces the value wholesale and survives only until the next restart,
// so every replacement is logged loudly for manual re-provisioning.
type TokenStore struct {
	mu        sync.RWMutex
	access    string
	rotatedAt time.Time
	rotated   bool
	logger    *slog.Logger
}

// NewTokenStore creates a TokenStore seeded with the configured access token.
func NewTokenStore(access string, logger *slog.Logger) *TokenStore {
	return &TokenStore{access: access, logger: logger}
}

// Access returns the current access credential.
func (s *TokenStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// SetAccess replaces the access credential for the remaining process
// lifetime. The replacement cannot be written back to the configuration
// source, so the operator must copy it into the environment by hand.
func (s *TokenStore) SetAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	s.rotatedAt = time.Now()
	s.rotated = true

	s.logger.Warn("access token replaced in memory only",
		"action", "update OPSBOARD_JOBBER_ACCESS_TOKEN with the new token and redeploy",
		"rotated_at", s.rotatedAt,
	)
}

// LastRotated reports the most recent in-process token replacement.
func (s *TokenStore) LastRotated() (string, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.rotatedAt, s.rotated
}
