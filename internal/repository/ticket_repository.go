package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gymhub/internal/model"
)

// TicketRepo stores support tickets.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, user_id, subject, message, status, admin_reply, created_at, updated_at`

func scanTicket(s rowScanner) (model.Ticket, error) {
	var t model.Ticket
	err := s.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.AdminReply, &t.CreatedAt, &t.UpdatedAt)
	return t, notFound(err)
}

func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tickets (user_id, subject, message, status, admin_reply) VALUES (?,?,?,?,'')",
		t.UserID, t.Subject, t.Message, t.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	return scanTicket(r.db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id=?", id))
}

// ListByUser returns one user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	return r.query(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
}

// List returns every ticket, optionally filtered by status.
func (r *TicketRepo) List(ctx context.Context, status *model.TicketStatus) ([]model.Ticket, error) {
	if status != nil {
		return r.query(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE status=? ORDER BY created_at DESC, id DESC", *status)
	}
	return r.query(ctx, "SELECT "+ticketColumns+" FROM tickets ORDER BY created_at DESC, id DESC")
}

// Reply records the admin answer and the new status.
func (r *TicketRepo) Reply(ctx context.Context, id uint64, status model.TicketStatus, reply string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE tickets SET status=?, admin_reply=? WHERE id=?", status, reply, id)
	return err
}

func (r *TicketRepo) query(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
