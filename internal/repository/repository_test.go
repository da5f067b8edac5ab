package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gymhub/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var ts = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	hash := "$2a$10$x"

	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs("asha@example.com", hash, nil, "user,owner", "Asha", "", true).
		WillReturnResult(sqlmock.NewResult(7, 1))

	u := model.User{Email: "  Asha@Example.com ", PasswordHash: &hash, Roles: model.RoleUser | model.RoleOwner, Name: "Asha", IsVerified: true}
	require.NoError(t, repo.Create(context.Background(), &u))
	assert.EqualValues(t, 7, u.ID)
	assert.Equal(t, "asha@example.com", u.Email)
}

func TestUserRepo_CreateRequiresCredential(t *testing.T) {
	db, _ := newMock(t)
	u := &model.User{Email: "nobody@example.com", Roles: model.RoleUser}
	assert.ErrorIs(t, NewUserRepo(db).Create(context.Background(), u), ErrNoCredential)
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "google_id", "roles", "role", "name", "phone",
		"is_verified", "otp_code", "otp_expires", "reset_code", "reset_expires", "created_at", "updated_at"})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email=?")).
		WithArgs("legacy@example.com").
		WillReturnRows(userRow().AddRow(3, "legacy@example.com", "$2a$10$x", nil, "", "owner", "Lee", "",
			false, "123456", ts, nil, nil, ts, ts))

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "Legacy@example.com")
	require.NoError(t, err)
	assert.True(t, u.Roles.Empty())
	require.NotNil(t, u.LegacyRole)
	assert.Equal(t, "owner", *u.LegacyRole)
	assert.Nil(t, u.GoogleID)
	require.NotNil(t, u.OTPExpires)
	assert.True(t, u.OTPExpires.Equal(ts))
	assert.Nil(t, u.ResetCode)
}

func TestUserRepo_GetByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE id=?")).WithArgs(uint64(9)).WillReturnRows(userRow())

	_, err := NewUserRepo(db).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_ExecNoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	// unchanged row: 0 affected but the user exists
	mock.ExpectExec(q("UPDATE users SET roles=? WHERE id=?")).
		WithArgs("user", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT 1 FROM users WHERE id=?")).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	assert.NoError(t, repo.SetRoles(context.Background(), 1, model.RoleUser))

	mock.ExpectExec(q("UPDATE users SET name=?, phone=? WHERE id=?")).
		WithArgs("N", "", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT 1 FROM users WHERE id=?")).WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), 2, "N", ""), ErrNotFound)
}

func TestUserRepo_LinkGoogleTaken(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE users SET google_id=?")).
		WithArgs("sub-1", "user", uint64(4)).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	err := NewUserRepo(db).LinkGoogle(context.Background(), 4, "sub-1", model.RoleUser)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSessionRepo(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	mock.ExpectExec(q("INSERT INTO sessions (user_id, token_hash, expires_at)")).
		WithArgs(uint64(1), "abc", ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Insert(ctx, 1, "abc", ts.In(time.FixedZone("IST", 19800))))

	mock.ExpectQuery(q("FROM sessions WHERE token_hash=?")).WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "is_revoked", "created_at"}).
			AddRow(1, 1, "abc", ts, true, ts))
	s, err := repo.FindByHash(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, s.IsRevoked)
	assert.False(t, s.Active(ts.Add(-time.Hour)))

	mock.ExpectQuery(q("FROM sessions WHERE token_hash=?")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "is_revoked", "created_at"}))
	_, err = repo.FindByHash(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// revoking an already revoked token affects nothing and is fine
	mock.ExpectExec(q("UPDATE sessions SET is_revoked=1 WHERE token_hash=? AND is_revoked=0")).
		WithArgs("abc").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Revoke(ctx, "abc"))

	mock.ExpectExec(q("WHERE user_id=? AND is_revoked=0")).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	assert.NoError(t, repo.RevokeAllForUser(ctx, 1))
}

func TestBookingRepo_CreateAndScan(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	mock.ExpectExec(q("INSERT INTO bookings")).
		WithArgs(uint64(1), uint64(2), nil, "Asha", "asha@example.com", int64(10000), "active",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	b := model.Booking{GymID: 1, PlanID: 2, MemberName: "Asha", MemberEmail: "asha@example.com",
		AmountCents: 10000, Status: model.BookingActive, BookedAt: ts, ValidFrom: ts, ValidTo: ts.AddDate(0, 0, 30)}
	require.NoError(t, repo.Create(ctx, &b))
	assert.EqualValues(t, 11, b.ID)

	cols := []string{"id", "gym_id", "plan_id", "user_id", "member_name", "member_email", "amount_cents", "status",
		"booked_at", "valid_from", "valid_to", "created_at", "updated_at"}
	mock.ExpectQuery(q("FROM bookings WHERE gym_id=? ORDER BY booked_at DESC, id DESC")).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(12, 1, 2, 5, "Ravi", "ravi@example.com", 500, "completed", ts, ts, ts, ts, ts).
			AddRow(11, 1, 2, nil, "Asha", "asha@example.com", 10000, "active", ts, ts, ts, ts, ts))
	list, err := repo.ListByGym(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].UserID)
	assert.EqualValues(t, 5, *list[0].UserID)
	assert.Equal(t, model.BookingCompleted, list[0].Status)
	assert.Nil(t, list[1].UserID)
}

func TestBookingRepo_UpdateStatusIsConditional(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec(q("UPDATE bookings SET status=? WHERE id=? AND status=?")).
		WithArgs("completed", uint64(3), "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(context.Background(), 3, model.BookingActive, model.BookingCompleted))

	mock.ExpectExec(q("UPDATE bookings SET status=? WHERE id=? AND status=?")).
		WithArgs("cancelled", uint64(3), "active").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 3, model.BookingActive, model.BookingCancelled), ErrConflict)
}

func expectBalance(mock sqlmock.Sqlmock, gymID uint64, gross, committed int64) {
	mock.ExpectQuery(q("SELECT COALESCE(SUM(amount_cents),0) FROM bookings WHERE gym_id=? AND status IN (?,?,?)")).
		WithArgs(gymID, "upcoming", "active", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(gross))
	mock.ExpectQuery(q("SELECT COALESCE(SUM(amount_cents),0) FROM payouts WHERE gym_id=? AND status IN (?,?,?)")).
		WithArgs(gymID, "Pending", "Processing", "Paid").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(committed))
}

func TestPayoutRepo_CreateGuardedCommits(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPayoutRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id FROM gyms WHERE id=? FOR UPDATE")).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	expectBalance(mock, 1, 10000, 0)
	mock.ExpectExec(q("INSERT INTO payouts (gym_id, amount_cents, status)")).
		WithArgs(uint64(1), int64(8500), "Pending").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(q("FROM payouts WHERE id=?")).WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "gym_id", "amount_cents", "status", "admin_note", "requested_at", "paid_at", "updated_at"}).
			AddRow(21, 1, 8500, "Pending", "", ts, nil, ts))
	mock.ExpectCommit()

	var seenGross, seenCommitted int64
	p, err := repo.CreateGuarded(context.Background(), 1, 8500, func(gross, committed int64) error {
		seenGross, seenCommitted = gross, committed
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 21, p.ID)
	assert.Equal(t, model.PayoutPending, p.Status)
	assert.Nil(t, p.PaidAt)
	assert.EqualValues(t, 10000, seenGross)
	assert.EqualValues(t, 0, seenCommitted)
}

func TestPayoutRepo_CreateGuardedRejectRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPayoutRepo(db)
	rejected := errors.New("insufficient")

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	expectBalance(mock, 1, 10000, 8500)
	mock.ExpectRollback()

	_, err := repo.CreateGuarded(context.Background(), 1, 1, func(int64, int64) error { return rejected })
	assert.ErrorIs(t, err, rejected)
}

func TestPayoutRepo_CreateGuardedUnknownGym(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := NewPayoutRepo(db).CreateGuarded(context.Background(), 404, 1, func(int64, int64) error {
		t.Fatal("check must not run for an unknown gym")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsRepo_Counts(t *testing.T) {
	db, mock := newMock(t)
	owner := uint64(5)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM gyms g WHERE g.owner_id=?")).WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectQuery(q("FROM plans p JOIN gyms g ON g.id=p.gym_id WHERE g.owner_id=?")).WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery(q("GROUP BY b.status")).WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n", "total"}).
			AddRow("completed", 2, 20000).
			AddRow("cancelled", 1, 5000).
			AddRow("upcoming", 1, 1000))

	c, err := NewStatsRepo(db).Counts(context.Background(), &owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.Gyms)
	assert.EqualValues(t, 3, c.Plans)
	assert.EqualValues(t, 1, c.Bookings[model.BookingCancelled])
	assert.EqualValues(t, 21000, c.GrossCents, "cancelled bookings carry no revenue")
}

func TestStatsRepo_PlatformScope(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT COUNT(*) FROM gyms g")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(q("FROM plans p")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(q("GROUP BY b.status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n", "total"}))

	c, err := NewStatsRepo(db).Counts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, c.GrossCents)
}

func TestGymRepo_ListFiltersCity(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "owner_id", "name", "city", "address", "description", "day_pass_cents",
		"bank_account_name", "bank_account_number", "bank_ifsc", "is_active", "created_at", "updated_at"}

	mock.ExpectQuery(q("FROM gyms WHERE is_active=1 AND city=? ORDER BY id")).WithArgs("Pune").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 5, "Iron Temple", "Pune", "", "", 500, "Iron LLP", "0001", "HDFC0001", true, ts, ts))
	gyms, err := NewGymRepo(db).List(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, gyms, 1)
	assert.True(t, gyms[0].HasBankDetails())

	mock.ExpectQuery(q("FROM gyms WHERE is_active=1 ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(cols))
	gyms, err = NewGymRepo(db).List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gyms)
	assert.NotNil(t, gyms, "empty lists encode as []")
}

func TestReviewRepo_DuplicateBooking(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO reviews")).
		WithArgs(uint64(3), uint64(1), nil, 5, "great").
		WillReturnError(&mysql.MySQLError{Number: 1062})
	err := NewReviewRepo(db).Create(context.Background(), &model.Review{BookingID: 3, GymID: 1, Rating: 5, Comment: "great"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPayoutRepo_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	paid := ts
	repo := NewPayoutRepo(db)
	mock.ExpectExec(q("UPDATE payouts SET status=?, admin_note=?, paid_at=? WHERE id=? AND status=?")).
		WithArgs("Paid", "utr 42", ts, uint64(21), "Processing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), 21, model.PayoutProcessing, model.PayoutPaid, "utr 42", &paid))

	mock.ExpectExec(q("UPDATE payouts SET")).
		WithArgs("Rejected", "no bank", nil, uint64(22), "Pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), 22, model.PayoutPending, model.PayoutRejected, "no bank", nil))

	// Another admin already settled the payout.
	mock.ExpectExec(q("UPDATE payouts SET")).
		WithArgs("Rejected", "", nil, uint64(23), "Pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), 23, model.PayoutPending, model.PayoutRejected, "", nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepo_RecordOTPFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE users SET otp_attempts=otp_attempts+1")).
		WithArgs(5, 5, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewUserRepo(db).RecordOTPFailure(context.Background(), 3, 5))

	mock.ExpectExec(q("UPDATE users SET otp_code=?, otp_expires=?, otp_attempts=0 WHERE id=?")).
		WithArgs("123456", ts, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewUserRepo(db).SetLoginOTP(context.Background(), 3, "123456", ts))
}

func TestTicketRepo_ListByStatus(t *testing.T) {
	db, mock := newMock(t)
	open := model.TicketOpen
	mock.ExpectQuery(q("FROM tickets WHERE status=?")).WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "subject", "message", "status", "admin_reply", "created_at", "updated_at"}).
			AddRow(1, 2, "Refund", "Charged twice", "open", "", ts, ts))
	list, err := NewTicketRepo(db).List(context.Background(), &open)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.TicketOpen, list[0].Status)
}
