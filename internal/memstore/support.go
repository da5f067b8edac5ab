package memstore

import (
	"context"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
)

type Reviews struct{ db *DB }

func (s *Reviews) Create(_ context.Context, r *model.Review) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, ex := range s.db.reviews {
		if ex.BookingID == r.BookingID {
			return repository.ErrConflict
		}
	}
	r.ID = s.db.nextID()
	r.CreatedAt = s.db.now()
	s.db.reviews[r.ID] = *r
	return nil
}

func (s *Reviews) GetByID(_ context.Context, id uint64) (model.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.reviews[id]
	if !ok {
		return model.Review{}, errNotFound
	}
	return r, nil
}

func (s *Reviews) ListByGym(_ context.Context, gymID uint64) ([]model.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.reviews, func(r model.Review) bool { return r.GymID == gymID })), nil
}

func (s *Reviews) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.reviews[id]; !ok {
		return errNotFound
	}
	delete(s.db.reviews, id)
	return nil
}

type Tickets struct{ db *DB }

func (s *Tickets) Create(_ context.Context, t *model.Ticket) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = s.db.nextID()
	t.CreatedAt = s.db.now()
	t.UpdatedAt = t.CreatedAt
	s.db.tickets[t.ID] = *t
	return nil
}

func (s *Tickets) GetByID(_ context.Context, id uint64) (model.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tickets[id]
	if !ok {
		return model.Ticket{}, errNotFound
	}
	return t, nil
}

func (s *Tickets) ListByUser(_ context.Context, userID uint64) ([]model.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.tickets, func(t model.Ticket) bool { return t.UserID == userID })), nil
}

func (s *Tickets) List(_ context.Context, status *model.TicketStatus) ([]model.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.tickets, func(t model.Ticket) bool {
		return status == nil || t.Status == *status
	})), nil
}

func (s *Tickets) Reply(_ context.Context, id uint64, status model.TicketStatus, reply string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tickets[id]
	if !ok {
		return errNotFound
	}
	t.Status, t.AdminReply, t.UpdatedAt = status, reply, s.db.now()
	s.db.tickets[id] = t
	return nil
}

type Stats struct{ db *DB }

func (s *Stats) Counts(_ context.Context, ownerID *uint64) (model.Counts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c := model.Counts{Bookings: map[model.BookingStatus]int64{}}
	inScope := func(gymID uint64) bool {
		g, ok := s.db.gyms[gymID]
		return ok && (ownerID == nil || g.OwnerID == *ownerID)
	}
	for id := range s.db.gyms {
		if inScope(id) {
			c.Gyms++
		}
	}
	for _, p := range s.db.plans {
		if inScope(p.GymID) {
			c.Plans++
		}
	}
	for _, b := range s.db.bookings {
		if !inScope(b.GymID) {
			continue
		}
		c.Bookings[b.Status]++
		if b.Status.CountsTowardRevenue() {
			c.GrossCents += b.AmountCents
		}
	}
	return c, nil
}
