package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gymhub/internal/model"
)

// ReviewRepo stores gym reviews.  booking_id is unique so a booking can
// carry at most one review.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review; a second review for the same booking yields
// ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (booking_id, gym_id, user_id, rating, comment) VALUES (?,?,?,?,?)",
		rv.BookingID, rv.GymID, rv.UserID, rv.Rating, rv.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx,
		"SELECT id, booking_id, gym_id, user_id, rating, comment, created_at FROM reviews WHERE id=?", id))
}

// ListByGym returns the reviews for one gym, newest first.
func (r *ReviewRepo) ListByGym(ctx context.Context, gymID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, booking_id, gym_id, user_id, rating, comment, created_at FROM reviews WHERE gym_id=? ORDER BY created_at DESC, id DESC",
		gymID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Delete removes a review; ErrNotFound when it does not exist.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReview(s rowScanner) (model.Review, error) {
	var (
		rv     model.Review
		userID sql.NullInt64
	)
	if err := s.Scan(&rv.ID, &rv.BookingID, &rv.GymID, &userID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return model.Review{}, notFound(err)
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		rv.UserID = &uid
	}
	return rv, nil
}
