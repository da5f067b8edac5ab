package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gymhub/internal/model"
)

// StatsRepo runs the aggregate queries behind the dashboard.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Counts aggregates gyms, plans and bookings.  A nil ownerID covers the
// whole platform.
func (r *StatsRepo) Counts(ctx context.Context, ownerID *uint64) (model.Counts, error) {
	c := model.Counts{Bookings: map[model.BookingStatus]int64{}}

	where, args := "", []any{}
	if ownerID != nil {
		where, args = " WHERE g.owner_id=?", []any{*ownerID}
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gyms g"+where, args...).Scan(&c.Gyms); err != nil {
		return c, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM plans p JOIN gyms g ON g.id=p.gym_id"+where, args...).Scan(&c.Plans); err != nil {
		return c, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT b.status, COUNT(*), COALESCE(SUM(b.amount_cents),0) FROM bookings b JOIN gyms g ON g.id=b.gym_id"+
			where+" GROUP BY b.status", args...)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			st    model.BookingStatus
			n     int64
			total int64
		)
		if err := rows.Scan(&st, &n, &total); err != nil {
			return c, err
		}
		c.Bookings[st] = n
		if st.CountsTowardRevenue() {
			c.GrossCents += total
		}
	}
	return c, rows.Err()
}

