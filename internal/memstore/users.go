package memstore

import (
	"context"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
)

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u *model.User) error {
	if !u.HasCredential() {
		return repository.ErrNoCredential
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	for _, ex := range s.db.users {
		if ex.Email == u.Email {
			return repository.ErrEmailExists
		}
		if u.GoogleID != nil && ex.GoogleID != nil && *ex.GoogleID == *u.GoogleID {
			return repository.ErrConflict
		}
	}
	u.ID = s.db.nextID()
	u.CreatedAt = s.db.now()
	u.UpdatedAt = u.CreatedAt
	s.db.users[u.ID] = *u
	return nil
}

// Put stores a user as is, bypassing validation.  Tests use it to seed
// legacy rows.
func (s *Users) Put(u model.User) model.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.db.nextID()
	}
	u.Email = normalizeEmail(u.Email)
	s.db.users[u.ID] = u
	return u
}

func (s *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = normalizeEmail(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errNotFound
}

func (s *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, errNotFound
	}
	return u, nil
}

func (s *Users) update(id uint64, fn func(*model.User) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return errNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = s.db.now()
	s.db.users[id] = u
	return nil
}

func (s *Users) SetRoles(_ context.Context, id uint64, roles model.Roles) error {
	return s.update(id, func(u *model.User) error { u.Roles = roles; return nil })
}

func (s *Users) SetLoginOTP(_ context.Context, id uint64, code string, exp time.Time) error {
	return s.update(id, func(u *model.User) error {
		u.OTPCode, u.OTPExpires = &code, &exp
		delete(s.db.otpFailures, id)
		return nil
	})
}

func (s *Users) RecordOTPFailure(_ context.Context, id uint64, limit int) error {
	return s.update(id, func(u *model.User) error {
		s.db.otpFailures[id]++
		if s.db.otpFailures[id] >= limit {
			u.OTPCode, u.OTPExpires = nil, nil
		}
		return nil
	})
}

func (s *Users) MarkVerified(_ context.Context, id uint64) error {
	return s.update(id, func(u *model.User) error {
		u.IsVerified, u.OTPCode, u.OTPExpires = true, nil, nil
		delete(s.db.otpFailures, id)
		return nil
	})
}

func (s *Users) SetResetCode(_ context.Context, id uint64, code string, exp time.Time) error {
	return s.update(id, func(u *model.User) error {
		u.ResetCode, u.ResetExpires = &code, &exp
		return nil
	})
}

func (s *Users) ResetPassword(_ context.Context, id uint64, hash string) error {
	return s.update(id, func(u *model.User) error {
		u.PasswordHash, u.ResetCode, u.ResetExpires = &hash, nil, nil
		return nil
	})
}

func (s *Users) LinkGoogle(_ context.Context, id uint64, googleID string, roles model.Roles) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return errNotFound
	}
	for uid, ex := range s.db.users {
		if uid != id && ex.GoogleID != nil && *ex.GoogleID == googleID {
			return repository.ErrConflict
		}
	}
	u.GoogleID, u.Roles, u.IsVerified = &googleID, roles, true
	u.UpdatedAt = s.db.now()
	s.db.users[id] = u
	return nil
}

func (s *Users) UpdateProfile(_ context.Context, id uint64, name, phone string) error {
	return s.update(id, func(u *model.User) error {
		u.Name, u.Phone = name, phone
		return nil
	})
}

// Sessions is the in-memory session ledger table.
type Sessions struct{ db *DB }

func (s *Sessions) Insert(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, dup := s.db.sessions[tokenHash]; dup {
		return repository.ErrConflict
	}
	s.db.sessions[tokenHash] = model.Session{
		ID: s.db.nextID(), UserID: userID, TokenHash: tokenHash, ExpiresAt: exp, CreatedAt: s.db.now(),
	}
	return nil
}

func (s *Sessions) FindByHash(_ context.Context, tokenHash string) (model.Session, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.sessions[tokenHash]
	if !ok {
		return model.Session{}, errNotFound
	}
	return row, nil
}

func (s *Sessions) Revoke(_ context.Context, tokenHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if row, ok := s.db.sessions[tokenHash]; ok {
		row.IsRevoked = true
		s.db.sessions[tokenHash] = row
	}
	return nil
}

func (s *Sessions) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for k, row := range s.db.sessions {
		if row.UserID == userID {
			row.IsRevoked = true
			s.db.sessions[k] = row
		}
	}
	return nil
}

// All returns a snapshot of the ledger.
func (s *Sessions) All() []model.Session {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Session, 0, len(s.db.sessions))
	for _, row := range s.db.sessions {
		out = append(out, row)
	}
	return out
}
