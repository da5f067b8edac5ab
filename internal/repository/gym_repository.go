package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gymhub/internal/model"
)

// GymRepo provides CRUD operations for gyms.
type GymRepo struct{ db *sql.DB }

func NewGymRepo(db *sql.DB) *GymRepo { return &GymRepo{db: db} }

const gymColumns = `id, owner_id, name, city, address, description, day_pass_cents,
	bank_account_name, bank_account_number, bank_ifsc, is_active, created_at, updated_at`

func scanGym(s rowScanner) (model.Gym, error) {
	var g model.Gym
	err := s.Scan(&g.ID, &g.OwnerID, &g.Name, &g.City, &g.Address, &g.Description, &g.DayPassCents,
		&g.BankAccountName, &g.BankAccountNumber, &g.BankIFSC, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return g, notFound(err)
}

// Create inserts a gym and sets its ID.
func (r *GymRepo) Create(ctx context.Context, g *model.Gym) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO gyms (owner_id, name, city, address, description, day_pass_cents,
		 bank_account_name, bank_account_number, bank_ifsc, is_active) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		g.OwnerID, g.Name, g.City, g.Address, g.Description, g.DayPassCents,
		g.BankAccountName, g.BankAccountNumber, g.BankIFSC, g.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// Update rewrites the editable columns of a gym.  The owner never changes.
func (r *GymRepo) Update(ctx context.Context, g *model.Gym) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gyms SET name=?, city=?, address=?, description=?, day_pass_cents=?,
		 bank_account_name=?, bank_account_number=?, bank_ifsc=?, is_active=? WHERE id=?`,
		g.Name, g.City, g.Address, g.Description, g.DayPassCents,
		g.BankAccountName, g.BankAccountNumber, g.BankIFSC, g.IsActive, g.ID)
	return err
}

// GetByID returns a gym or ErrNotFound.
func (r *GymRepo) GetByID(ctx context.Context, id uint64) (model.Gym, error) {
	return scanGym(r.db.QueryRowContext(ctx, "SELECT "+gymColumns+" FROM gyms WHERE id=?", id))
}

// List returns active gyms, optionally filtered by city.
func (r *GymRepo) List(ctx context.Context, city string) ([]model.Gym, error) {
	q := "SELECT " + gymColumns + " FROM gyms WHERE is_active=1"
	args := []any{}
	if city != "" {
		q += " AND city=?"
		args = append(args, city)
	}
	q += " ORDER BY id"
	return r.query(ctx, q, args...)
}

// ListByOwner returns every gym owned by a user, active or not.
func (r *GymRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Gym, error) {
	return r.query(ctx, "SELECT "+gymColumns+" FROM gyms WHERE owner_id=? ORDER BY id", ownerID)
}

func (r *GymRepo) query(ctx context.Context, q string, args ...any) ([]model.Gym, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Gym{}
	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// PlanRepo provides CRUD operations for gym plans.
type PlanRepo struct{ db *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{db: db} }

const planColumns = `id, gym_id, name, sessions, price_cents, validity_days, is_active, created_at, updated_at`

func scanPlan(s rowScanner) (model.Plan, error) {
	var p model.Plan
	err := s.Scan(&p.ID, &p.GymID, &p.Name, &p.Sessions, &p.PriceCents, &p.ValidityDays,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, notFound(err)
}

func (r *PlanRepo) Create(ctx context.Context, p *model.Plan) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (gym_id, name, sessions, price_cents, validity_days, is_active) VALUES (?,?,?,?,?,?)`,
		p.GymID, p.Name, p.Sessions, p.PriceCents, p.ValidityDays, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *PlanRepo) Update(ctx context.Context, p *model.Plan) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE plans SET name=?, sessions=?, price_cents=?, validity_days=?, is_active=? WHERE id=?`,
		p.Name, p.Sessions, p.PriceCents, p.ValidityDays, p.IsActive, p.ID)
	return err
}

func (r *PlanRepo) GetByID(ctx context.Context, id uint64) (model.Plan, error) {
	return scanPlan(r.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id=?", id))
}

// ListByGym returns the plans of a gym; activeOnly hides retired plans.
func (r *PlanRepo) ListByGym(ctx context.Context, gymID uint64, activeOnly bool) ([]model.Plan, error) {
	q := "SELECT " + planColumns + " FROM plans WHERE gym_id=?"
	if activeOnly {
		q += " AND is_active=1"
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY price_cents", gymID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
