package service

import (
	"context"
	"strings"

	"github.com/iliyamo/gymhub/internal/model"
)

// CatalogService manages gyms and their plans.
type CatalogService struct {
	Gyms  GymStore
	Plans PlanStore
}

// GymView is a gym as shown in listings.  Owned is set when the viewer
// manages the gym.
type GymView struct {
	model.Gym
	Owned          bool `json:"owned"`
	HasBankDetails bool `json:"has_bank_details,omitempty"`
}

// PlanView carries the derived discount next to the stored plan.
type PlanView struct {
	model.Plan
	Discount float64 `json:"base_discount"`
}

type GymInput struct {
	Name              string `json:"name"`
	City              string `json:"city"`
	Address           string `json:"address"`
	Description       string `json:"description"`
	DayPassCents      int64  `json:"day_pass_cents"`
	BankAccountName   string `json:"bank_account_name"`
	BankAccountNumber string `json:"bank_account_number"`
	BankIFSC          string `json:"bank_ifsc"`
	IsActive          *bool  `json:"is_active"`
}

type PlanInput struct {
	GymID        uint64 `json:"gym_id"`
	Name         string `json:"name"`
	Sessions     int    `json:"sessions"`
	PriceCents   int64  `json:"price_cents"`
	ValidityDays int    `json:"validity_days"`
	IsActive     *bool  `json:"is_active"`
}

// authorizeGym loads a gym and checks that actor may manage it: admins may
// manage every gym, owners only their own.
func authorizeGym(ctx context.Context, gyms GymStore, actor model.User, gymID uint64) (model.Gym, error) {
	g, err := gyms.GetByID(ctx, gymID)
	if err != nil {
		return model.Gym{}, fromStore(err, "load gym", "gym")
	}
	if actor.Roles.Has(model.RoleAdmin) {
		return g, nil
	}
	if actor.Roles.Has(model.RoleOwner) && g.OwnerID == actor.ID {
		return g, nil
	}
	return model.Gym{}, fail(ErrForbidden, "you do not manage this gym")
}

// ListGyms returns active gyms, optionally filtered by city.  viewer may be
// nil for anonymous callers.
func (s *CatalogService) ListGyms(ctx context.Context, city string, viewer *model.User) ([]GymView, error) {
	gyms, err := s.Gyms.List(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, fromStore(err, "list gyms", "gym")
	}
	out := make([]GymView, 0, len(gyms))
	for _, g := range gyms {
		out = append(out, GymView{Gym: g, Owned: viewer != nil && g.OwnerID == viewer.ID})
	}
	return out, nil
}

// MyGyms lists every gym of the owner, including inactive ones.
func (s *CatalogService) MyGyms(ctx context.Context, owner model.User) ([]GymView, error) {
	gyms, err := s.Gyms.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fromStore(err, "list gyms", "gym")
	}
	out := make([]GymView, 0, len(gyms))
	for _, g := range gyms {
		out = append(out, GymView{Gym: g, Owned: true, HasBankDetails: g.HasBankDetails()})
	}
	return out, nil
}

// GetGym returns an active gym.
func (s *CatalogService) GetGym(ctx context.Context, id uint64) (model.Gym, error) {
	g, err := s.Gyms.GetByID(ctx, id)
	if err != nil {
		return model.Gym{}, fromStore(err, "load gym", "gym")
	}
	if !g.IsActive {
		return model.Gym{}, fail(ErrNotFound, "gym not found")
	}
	return g, nil
}

// ListPlans returns the active plans of an active gym with their discount
// against the day pass.
func (s *CatalogService) ListPlans(ctx context.Context, gymID uint64) ([]PlanView, error) {
	g, err := s.GetGym(ctx, gymID)
	if err != nil {
		return nil, err
	}
	plans, err := s.Plans.ListByGym(ctx, gymID, true)
	if err != nil {
		return nil, fromStore(err, "list plans", "plan")
	}
	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanView{Plan: p, Discount: p.BaseDiscount(g.DayPassCents)})
	}
	return out, nil
}

func (in GymInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fail(ErrValidation, "name is required")
	}
	if in.DayPassCents < 0 {
		return fail(ErrValidation, "day_pass_cents must not be negative")
	}
	return nil
}

func (in GymInput) apply(g *model.Gym) {
	g.Name = strings.TrimSpace(in.Name)
	g.City = strings.TrimSpace(in.City)
	g.Address = strings.TrimSpace(in.Address)
	g.Description = in.Description
	g.DayPassCents = in.DayPassCents
	g.BankAccountName = strings.TrimSpace(in.BankAccountName)
	g.BankAccountNumber = strings.TrimSpace(in.BankAccountNumber)
	g.BankIFSC = strings.ToUpper(strings.TrimSpace(in.BankIFSC))
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
}

// CreateGym registers a gym owned by owner.
func (s *CatalogService) CreateGym(ctx context.Context, owner model.User, in GymInput) (model.Gym, error) {
	if err := in.validate(); err != nil {
		return model.Gym{}, err
	}
	g := model.Gym{OwnerID: owner.ID, IsActive: true}
	in.apply(&g)
	if err := s.Gyms.Create(ctx, &g); err != nil {
		return model.Gym{}, fromStore(err, "create gym", "gym")
	}
	return g, nil
}

func (s *CatalogService) UpdateGym(ctx context.Context, actor model.User, id uint64, in GymInput) (model.Gym, error) {
	if err := in.validate(); err != nil {
		return model.Gym{}, err
	}
	g, err := authorizeGym(ctx, s.Gyms, actor, id)
	if err != nil {
		return model.Gym{}, err
	}
	in.apply(&g)
	if err := s.Gyms.Update(ctx, &g); err != nil {
		return model.Gym{}, fromStore(err, "update gym", "gym")
	}
	return g, nil
}

func (in PlanInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fail(ErrValidation, "name is required")
	case in.Sessions <= 0:
		return fail(ErrValidation, "sessions must be positive")
	case in.PriceCents < 0:
		return fail(ErrValidation, "price_cents must not be negative")
	case in.ValidityDays <= 0:
		return fail(ErrValidation, "validity_days must be positive")
	}
	return nil
}

func (in PlanInput) apply(p *model.Plan) {
	p.Name = strings.TrimSpace(in.Name)
	p.Sessions = in.Sessions
	p.PriceCents = in.PriceCents
	p.ValidityDays = in.ValidityDays
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

// CreatePlan adds a plan to a gym the actor manages.
func (s *CatalogService) CreatePlan(ctx context.Context, actor model.User, in PlanInput) (model.Plan, error) {
	if err := in.validate(); err != nil {
		return model.Plan{}, err
	}
	if _, err := authorizeGym(ctx, s.Gyms, actor, in.GymID); err != nil {
		return model.Plan{}, err
	}
	p := model.Plan{GymID: in.GymID, IsActive: true}
	in.apply(&p)
	if err := s.Plans.Create(ctx, &p); err != nil {
		return model.Plan{}, fromStore(err, "create plan", "plan")
	}
	return p, nil
}

// UpdatePlan edits a plan.  A plan never moves to another gym.
func (s *CatalogService) UpdatePlan(ctx context.Context, actor model.User, id uint64, in PlanInput) (model.Plan, error) {
	if err := in.validate(); err != nil {
		return model.Plan{}, err
	}
	p, err := s.ownedPlan(ctx, actor, id)
	if err != nil {
		return model.Plan{}, err
	}
	in.apply(&p)
	if err := s.Plans.Update(ctx, &p); err != nil {
		return model.Plan{}, fromStore(err, "update plan", "plan")
	}
	return p, nil
}

// DeletePlan retires a plan.  Existing bookings keep referencing it.
func (s *CatalogService) DeletePlan(ctx context.Context, actor model.User, id uint64) error {
	p, err := s.ownedPlan(ctx, actor, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return fromStore(s.Plans.Update(ctx, &p), "retire plan", "plan")
}

func (s *CatalogService) ownedPlan(ctx context.Context, actor model.User, id uint64) (model.Plan, error) {
	p, err := s.Plans.GetByID(ctx, id)
	if err != nil {
		return model.Plan{}, fromStore(err, "load plan", "plan")
	}
	if _, err := authorizeGym(ctx, s.Gyms, actor, p.GymID); err != nil {
		return model.Plan{}, err
	}
	return p, nil
}
