package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/gymhub/internal/repository"
	"github.com/iliyamo/gymhub/internal/utils"
)

// SessionLedger records which refresh tokens may still be exchanged for
// access tokens.  Tokens are stored as an HMAC keyed with a server secret,
// so reading the table does not yield usable credentials.
type SessionLedger struct {
	store SessionStore
	key   []byte
	now   func() time.Time
}

func NewSessionLedger(store SessionStore, key string) *SessionLedger {
	return &SessionLedger{store: store, key: []byte(key), now: time.Now}
}

// WithClock returns a copy of the ledger that reads time from now.
func (l *SessionLedger) WithClock(now func() time.Time) *SessionLedger {
	cp := *l
	cp.now = now
	return &cp
}

func (l *SessionLedger) RecordSession(ctx context.Context, userID uint64, refreshToken string, expiresAt time.Time) error {
	if err := l.store.Insert(ctx, userID, utils.HashRefresh(l.key, refreshToken), expiresAt); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// Revoke marks the session for refreshToken revoked.  Unknown or already
// revoked tokens are not an error.
func (l *SessionLedger) Revoke(ctx context.Context, refreshToken string) error {
	if err := l.store.Revoke(ctx, utils.HashRefresh(l.key, refreshToken)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of a user.
func (l *SessionLedger) RevokeAll(ctx context.Context, userID uint64) error {
	if err := l.store.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// IsActive reports whether a non-revoked, unexpired row exists for the token.
func (l *SessionLedger) IsActive(ctx context.Context, refreshToken string) (bool, error) {
	s, err := l.store.FindByHash(ctx, utils.HashRefresh(l.key, refreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find session: %w", err)
	}
	return s.Active(l.now()), nil
}
