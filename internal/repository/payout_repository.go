package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
)

// PayoutRepo stores withdrawal requests and answers balance queries.
type PayoutRepo struct {
	db *sql.DB
}

func NewPayoutRepo(db *sql.DB) *PayoutRepo { return &PayoutRepo{db: db} }

// querier is satisfied by *sql.DB and *sql.Tx so balance sums can run
// inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const payoutColumns = `id, gym_id, amount_cents, status, admin_note, requested_at, paid_at, updated_at`

func scanPayout(s rowScanner) (model.Payout, error) {
	var (
		p      model.Payout
		paidAt sql.NullTime
	)
	err := s.Scan(&p.ID, &p.GymID, &p.AmountCents, &p.Status, &p.AdminNote, &p.RequestedAt, &paidAt, &p.UpdatedAt)
	if err != nil {
		return model.Payout{}, notFound(err)
	}
	p.PaidAt = nullTime(paidAt)
	return p, nil
}

// balance sums the gross of revenue-bearing bookings and the payouts that
// are already committed for a gym.
func balance(ctx context.Context, q querier, gymID uint64) (gross, committed int64, err error) {
	rs := model.RevenueStatuses()
	err = q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents),0) FROM bookings WHERE gym_id=? AND status IN (?,?,?)",
		gymID, rs[0], rs[1], rs[2]).Scan(&gross)
	if err != nil {
		return 0, 0, err
	}
	ps := model.CommittedPayoutStatuses()
	err = q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents),0) FROM payouts WHERE gym_id=? AND status IN (?,?,?)",
		gymID, ps[0], ps[1], ps[2]).Scan(&committed)
	if err != nil {
		return 0, 0, err
	}
	return gross, committed, nil
}

// Balance returns the current gross and committed totals for a gym.
func (r *PayoutRepo) Balance(ctx context.Context, gymID uint64) (gross, committed int64, err error) {
	return balance(ctx, r.db, gymID)
}

// CreateGuarded inserts a Pending payout if check accepts the balance.  The
// gym row is locked with SELECT ... FOR UPDATE for the whole transaction,
// so concurrent requests for the same gym run their check and insert one
// after another and cannot both spend the same balance.
func (r *PayoutRepo) CreateGuarded(ctx context.Context, gymID uint64, amount int64, check func(gross, committed int64) error) (model.Payout, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Payout{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM gyms WHERE id=? FOR UPDATE", gymID).Scan(&locked); err != nil {
		return model.Payout{}, notFound(err)
	}
	gross, spent, err := balance(ctx, tx, gymID)
	if err != nil {
		return model.Payout{}, err
	}
	if err := check(gross, spent); err != nil {
		return model.Payout{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payouts (gym_id, amount_cents, status) VALUES (?,?,?)", gymID, amount, model.PayoutPending)
	if err != nil {
		return model.Payout{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Payout{}, err
	}
	p, err := scanPayout(tx.QueryRowContext(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE id=?", id))
	if err != nil {
		return model.Payout{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Payout{}, err
	}
	committed = true
	return p, nil
}

func (r *PayoutRepo) GetByID(ctx context.Context, id uint64) (model.Payout, error) {
	return scanPayout(r.db.QueryRowContext(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE id=?", id))
}

// ListByGym returns a gym's payouts, newest first.
func (r *PayoutRepo) ListByGym(ctx context.Context, gymID uint64) ([]model.Payout, error) {
	return r.query(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE gym_id=? ORDER BY requested_at DESC, id DESC", gymID)
}

// List returns payouts across all gyms, optionally filtered by status.
func (r *PayoutRepo) List(ctx context.Context, status *model.PayoutStatus) ([]model.Payout, error) {
	if status != nil {
		return r.query(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE status=? ORDER BY requested_at DESC, id DESC", *status)
	}
	return r.query(ctx, "SELECT "+payoutColumns+" FROM payouts ORDER BY requested_at DESC, id DESC")
}

// UpdateStatus moves a payout from one status to another and records the
// note and paid timestamp.  ErrConflict means the payout was no longer in
// status from.
func (r *PayoutRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.PayoutStatus, note string, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payouts SET status=?, admin_note=?, paid_at=? WHERE id=? AND status=?", to, note, paidAt, id, from)
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

func (r *PayoutRepo) query(ctx context.Context, q string, args ...any) ([]model.Payout, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Payout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
