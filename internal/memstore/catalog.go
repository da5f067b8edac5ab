package memstore

import (
	"context"

	"github.com/iliyamo/gymhub/internal/model"
)

type Gyms struct{ db *DB }

func (s *Gyms) Create(_ context.Context, g *model.Gym) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g.ID = s.db.nextID()
	g.CreatedAt = s.db.now()
	g.UpdatedAt = g.CreatedAt
	s.db.gyms[g.ID] = *g
	return nil
}

func (s *Gyms) Update(_ context.Context, g *model.Gym) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	old, ok := s.db.gyms[g.ID]
	if !ok {
		return errNotFound
	}
	g.OwnerID, g.CreatedAt, g.UpdatedAt = old.OwnerID, old.CreatedAt, s.db.now()
	s.db.gyms[g.ID] = *g
	return nil
}

func (s *Gyms) GetByID(_ context.Context, id uint64) (model.Gym, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.gyms[id]
	if !ok {
		return model.Gym{}, errNotFound
	}
	return g, nil
}

func (s *Gyms) List(_ context.Context, city string) ([]model.Gym, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedByID(s.db.gyms, func(g model.Gym) bool {
		return g.IsActive && (city == "" || g.City == city)
	}), nil
}

func (s *Gyms) ListByOwner(_ context.Context, ownerID uint64) ([]model.Gym, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedByID(s.db.gyms, func(g model.Gym) bool { return g.OwnerID == ownerID }), nil
}

type Plans struct{ db *DB }

func (s *Plans) Create(_ context.Context, p *model.Plan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p.ID = s.db.nextID()
	p.CreatedAt = s.db.now()
	p.UpdatedAt = p.CreatedAt
	s.db.plans[p.ID] = *p
	return nil
}

func (s *Plans) Update(_ context.Context, p *model.Plan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	old, ok := s.db.plans[p.ID]
	if !ok {
		return errNotFound
	}
	p.GymID, p.CreatedAt, p.UpdatedAt = old.GymID, old.CreatedAt, s.db.now()
	s.db.plans[p.ID] = *p
	return nil
}

func (s *Plans) GetByID(_ context.Context, id uint64) (model.Plan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.plans[id]
	if !ok {
		return model.Plan{}, errNotFound
	}
	return p, nil
}

func (s *Plans) ListByGym(_ context.Context, gymID uint64, activeOnly bool) ([]model.Plan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedByID(s.db.plans, func(p model.Plan) bool {
		return p.GymID == gymID && (!activeOnly || p.IsActive)
	}), nil
}
