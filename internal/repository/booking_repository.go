package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gymhub/internal/model"
)

// BookingRepo stores plan purchases.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, gym_id, plan_id, user_id, member_name, member_email, amount_cents, status,
	booked_at, valid_from, valid_to, created_at, updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		userID sql.NullInt64
	)
	err := s.Scan(&b.ID, &b.GymID, &b.PlanID, &userID, &b.MemberName, &b.MemberEmail, &b.AmountCents,
		&b.Status, &b.BookedAt, &b.ValidFrom, &b.ValidTo, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		b.UserID = &uid
	}
	return b, nil
}

// Create inserts a booking and populates its generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (gym_id, plan_id, user_id, member_name, member_email, amount_cents, status,
		 booked_at, valid_from, valid_to) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.GymID, b.PlanID, b.UserID, b.MemberName, b.MemberEmail, b.AmountCents, b.Status,
		b.BookedAt.UTC(), b.ValidFrom.UTC(), b.ValidTo.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", id))
}

// ListByGym returns a gym's bookings, newest first.
func (r *BookingRepo) ListByGym(ctx context.Context, gymID uint64) ([]model.Booking, error) {
	return r.query(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE gym_id=? ORDER BY booked_at DESC, id DESC", gymID)
}

// ListByUser returns the bookings made by a signed-in user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.query(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY booked_at DESC, id DESC", userID)
}

// UpdateStatus moves a booking from one status to another.  The update is
// conditional on the current status so two concurrent transitions cannot
// both apply; the loser gets ErrConflict.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=? AND status=?", to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
