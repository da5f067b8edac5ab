package memstore

import (
	"context"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
)

type Bookings struct{ db *DB }

func (s *Bookings) Create(_ context.Context, b *model.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b.ID = s.db.nextID()
	b.CreatedAt = s.db.now()
	b.UpdatedAt = b.CreatedAt
	s.db.bookings[b.ID] = *b
	return nil
}

func (s *Bookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return model.Booking{}, errNotFound
	}
	return b, nil
}

func (s *Bookings) ListByGym(_ context.Context, gymID uint64) ([]model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.bookings, func(b model.Booking) bool { return b.GymID == gymID })), nil
}

func (s *Bookings) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.bookings, func(b model.Booking) bool {
		return b.UserID != nil && *b.UserID == userID
	})), nil
}

func (s *Bookings) UpdateStatus(_ context.Context, id uint64, from, to model.BookingStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok || b.Status != from {
		return repository.ErrConflict
	}
	b.Status = to
	b.UpdatedAt = s.db.now()
	s.db.bookings[id] = b
	return nil
}

// Payouts keeps payout rows.  CreateGuarded holds the store mutex for the
// check and the insert, which gives the same per-gym serialization as the
// row lock taken by the MySQL repository.
type Payouts struct{ db *DB }

func (s *Payouts) balance(gymID uint64) (gross, committed int64) {
	for _, b := range s.db.bookings {
		if b.GymID == gymID && b.Status.CountsTowardRevenue() {
			gross += b.AmountCents
		}
	}
	for _, p := range s.db.payouts {
		if p.GymID == gymID && p.Status.CommitsBalance() {
			committed += p.AmountCents
		}
	}
	return gross, committed
}

func (s *Payouts) Balance(_ context.Context, gymID uint64) (int64, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	gross, committed := s.balance(gymID)
	return gross, committed, nil
}

func (s *Payouts) CreateGuarded(_ context.Context, gymID uint64, amount int64, check func(gross, committed int64) error) (model.Payout, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.gyms[gymID]; !ok {
		return model.Payout{}, errNotFound
	}
	if err := check(s.balance(gymID)); err != nil {
		return model.Payout{}, err
	}
	now := s.db.now()
	p := model.Payout{
		ID: s.db.nextID(), GymID: gymID, AmountCents: amount, Status: model.PayoutPending,
		RequestedAt: now, UpdatedAt: now,
	}
	s.db.payouts[p.ID] = p
	return p, nil
}

func (s *Payouts) GetByID(_ context.Context, id uint64) (model.Payout, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.payouts[id]
	if !ok {
		return model.Payout{}, errNotFound
	}
	return p, nil
}

func (s *Payouts) ListByGym(_ context.Context, gymID uint64) ([]model.Payout, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.payouts, func(p model.Payout) bool { return p.GymID == gymID })), nil
}

func (s *Payouts) List(_ context.Context, status *model.PayoutStatus) ([]model.Payout, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return newestFirst(sortedByID(s.db.payouts, func(p model.Payout) bool {
		return status == nil || p.Status == *status
	})), nil
}

func (s *Payouts) UpdateStatus(_ context.Context, id uint64, from, to model.PayoutStatus, note string, paidAt *time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.payouts[id]
	if !ok {
		return errNotFound
	}
	if p.Status != from {
		return repository.ErrConflict
	}
	p.Status, p.AdminNote, p.PaidAt, p.UpdatedAt = to, note, paidAt, s.db.now()
	s.db.payouts[id] = p
	return nil
}
