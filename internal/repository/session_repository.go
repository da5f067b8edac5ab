package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
)

// SessionRepo is the persistence behind the session ledger.  Rows are keyed
// by the keyed hash of the refresh token; the raw token never reaches the
// database.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Insert appends a session row.
func (r *SessionRepo) Insert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return err
}

// FindByHash returns the session row for a token hash, revoked or not.
func (r *SessionRepo) FindByHash(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, is_revoked, created_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.IsRevoked, &s.CreatedAt)
	if err != nil {
		return model.Session{}, notFound(err)
	}
	return s, nil
}

// Revoke marks the matching row revoked.  Revoking an already revoked or
// unknown token is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_revoked=1 WHERE token_hash=? AND is_revoked=0", tokenHash)
	return err
}

// RevokeAllForUser revokes all of a user's active sessions.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_revoked=1 WHERE user_id=? AND is_revoked=0", userID)
	return err
}
