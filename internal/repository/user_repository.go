package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
)

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, google_id, roles, role, name, phone, is_verified,
	otp_code, otp_expires, reset_code, reset_expires, created_at, updated_at`

func scanUser(s rowScanner) (model.User, error) {
	var (
		u                        model.User
		pw, gid, legacy          sql.NullString
		otp, reset               sql.NullString
		otpExpires, resetExpires sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &pw, &gid, &u.Roles, &legacy, &u.Name, &u.Phone, &u.IsVerified,
		&otp, &otpExpires, &reset, &resetExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, notFound(err)
	}
	u.PasswordHash = nullString(pw)
	u.GoogleID = nullString(gid)
	u.LegacyRole = nullString(legacy)
	u.OTPCode = nullString(otp)
	u.OTPExpires = nullTime(otpExpires)
	u.ResetCode = nullString(reset)
	u.ResetExpires = nullTime(resetExpires)
	return u, nil
}

// Create inserts the user and sets its ID.  The email is normalised to
// lower case; a duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if !u.HasCredential() {
		return ErrNoCredential
	}
	u.Email = normalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, google_id, roles, name, phone, is_verified)
		 VALUES (?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.GoogleID, u.Roles, u.Name, u.Phone, u.IsVerified)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// SetRoles overwrites the role set.
func (r *UserRepo) SetRoles(ctx context.Context, id uint64, roles model.Roles) error {
	return r.exec(ctx, "UPDATE users SET roles=? WHERE id=?", roles, id)
}

// SetLoginOTP stores a login code and its expiry on the user row.
func (r *UserRepo) SetLoginOTP(ctx context.Context, id uint64, code string, exp time.Time) error {
	return r.exec(ctx, "UPDATE users SET otp_code=?, otp_expires=?, otp_attempts=0 WHERE id=?", code, exp.UTC(), id)
}

// RecordOTPFailure bumps the failed-attempt counter and clears the login
// code when it reaches limit.  MySQL applies the assignments left to right,
// so the IF tests see the incremented counter.
func (r *UserRepo) RecordOTPFailure(ctx context.Context, id uint64, limit int) error {
	return r.exec(ctx, `UPDATE users SET otp_attempts=otp_attempts+1,
	otp_code=IF(otp_attempts>=?, NULL, otp_code), otp_expires=IF(otp_attempts>=?, NULL, otp_expires)
	WHERE id=?`, limit, limit, id)
}

// MarkVerified clears the login code and flags the account verified.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	return r.exec(ctx, "UPDATE users SET is_verified=1, otp_code=NULL, otp_expires=NULL, otp_attempts=0 WHERE id=?", id)
}

// SetResetCode stores a password reset code.  It uses columns separate from
// the login code so the two flows never overwrite each other.
func (r *UserRepo) SetResetCode(ctx context.Context, id uint64, code string, exp time.Time) error {
	return r.exec(ctx, "UPDATE users SET reset_code=?, reset_expires=? WHERE id=?", code, exp.UTC(), id)
}

// ResetPassword writes a new password hash and clears the reset code.
func (r *UserRepo) ResetPassword(ctx context.Context, id uint64, hash string) error {
	return r.exec(ctx,
		"UPDATE users SET password_hash=?, reset_code=NULL, reset_expires=NULL WHERE id=?", hash, id)
}

// LinkGoogle attaches a Google subject id, updates the role set and marks
// the account verified.
func (r *UserRepo) LinkGoogle(ctx context.Context, id uint64, googleID string, roles model.Roles) error {
	err := r.exec(ctx, "UPDATE users SET google_id=?, roles=?, is_verified=1 WHERE id=?", googleID, roles, id)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// UpdateProfile edits the free-form profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone string) error {
	return r.exec(ctx, "UPDATE users SET name=?, phone=? WHERE id=?", name, phone, id)
}

// exec runs a single-row update and reports ErrNotFound when no row matched
// the id.  MySQL reports 0 affected rows for no-op updates too, so the id is
// re-checked before concluding the row is missing.
func (r *UserRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", args[len(args)-1]).Scan(&one)
	return notFound(err)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
