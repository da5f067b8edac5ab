package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/queue"
	"github.com/iliyamo/gymhub/internal/repository"
)

// BookingService creates bookings and drives their state machine.
type BookingService struct {
	Gyms     GymStore
	Plans    PlanStore
	Bookings BookingStore
	Events   Publisher
	Now      func() time.Time
}

type BookingInput struct {
	GymID       uint64     `json:"gym_id"`
	PlanID      uint64     `json:"plan_id"`
	MemberName  string     `json:"member_name"`
	MemberEmail string     `json:"member_email"`
	ValidFrom   *time.Time `json:"valid_from"`
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create books a plan.  The amount is the plan price at purchase time and
// the booking starts upcoming or active depending on its start date.
// buyer is nil for guest checkouts.
func (s *BookingService) Create(ctx context.Context, buyer *model.User, in BookingInput) (model.Booking, error) {
	name := strings.TrimSpace(in.MemberName)
	email := strings.ToLower(strings.TrimSpace(in.MemberEmail))
	if name == "" && buyer != nil {
		name = buyer.Name
	}
	if email == "" && buyer != nil {
		email = buyer.Email
	}
	if name == "" || !validEmail(email) {
		return model.Booking{}, fail(ErrValidation, "member name and a valid email are required")
	}

	g, err := s.Gyms.GetByID(ctx, in.GymID)
	if err != nil {
		return model.Booking{}, fromStore(err, "load gym", "gym")
	}
	if !g.IsActive {
		return model.Booking{}, fail(ErrNotFound, "gym not found")
	}
	p, err := s.Plans.GetByID(ctx, in.PlanID)
	if err != nil {
		return model.Booking{}, fromStore(err, "load plan", "plan")
	}
	if p.GymID != g.ID {
		return model.Booking{}, fail(ErrValidation, "plan does not belong to this gym")
	}
	if !p.IsActive {
		return model.Booking{}, fail(ErrValidation, "plan is no longer offered")
	}

	now := s.now().UTC()
	from := now
	if in.ValidFrom != nil {
		from = in.ValidFrom.UTC()
	}
	b := model.Booking{
		GymID:       g.ID,
		PlanID:      p.ID,
		MemberName:  name,
		MemberEmail: email,
		AmountCents: p.PriceCents,
		Status:      model.InitialBookingStatus(from, now),
		BookedAt:    now,
		ValidFrom:   from,
		ValidTo:     from.AddDate(0, 0, p.ValidityDays),
	}
	if buyer != nil {
		uid := buyer.ID
		b.UserID = &uid
	}
	if err := s.Bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, fromStore(err, "create booking", "booking")
	}
	publish(ctx, s.Events, queue.BookingCreated, bookingEvent(b, "", now))
	return b, nil
}

// ListByGym lists the bookings of a gym the actor manages.
func (s *BookingService) ListByGym(ctx context.Context, actor model.User, gymID uint64) ([]model.Booking, error) {
	if _, err := authorizeGym(ctx, s.Gyms, actor, gymID); err != nil {
		return nil, err
	}
	out, err := s.Bookings.ListByGym(ctx, gymID)
	return out, fromStore(err, "list bookings", "booking")
}

// ListMine lists the bookings made while signed in as user.
func (s *BookingService) ListMine(ctx context.Context, user model.User) ([]model.Booking, error) {
	out, err := s.Bookings.ListByUser(ctx, user.ID)
	return out, fromStore(err, "list bookings", "booking")
}

// UpdateStatus moves a booking along the state machine.  Only the gym's
// owner or an admin may do so; illegal moves and lost races are conflicts.
func (s *BookingService) UpdateStatus(ctx context.Context, actor model.User, id uint64, status string) (model.Booking, error) {
	next, ok := model.ParseBookingStatus(status)
	if !ok {
		return model.Booking{}, fail(ErrValidation, "unknown booking status %q", status)
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, fromStore(err, "load booking", "booking")
	}
	if _, err := authorizeGym(ctx, s.Gyms, actor, b.GymID); err != nil {
		return model.Booking{}, err
	}
	prev := b.Status
	if prev.Terminal() {
		return model.Booking{}, fail(ErrConflict, "booking is already %s", prev)
	}
	if err := b.Transition(next); err != nil {
		return model.Booking{}, fail(ErrConflict, "cannot move booking from %s to %s", prev, next)
	}
	if err := s.Bookings.UpdateStatus(ctx, id, prev, next); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Booking{}, fail(ErrConflict, "booking was changed concurrently")
		}
		return model.Booking{}, fromStore(err, "update booking", "booking")
	}
	publish(ctx, s.Events, queue.BookingStatusChanged, bookingEvent(b, prev, s.now()))
	return b, nil
}
