package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/metrics"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/queue"
	"github.com/iliyamo/gymhub/internal/repository"
	"github.com/iliyamo/gymhub/internal/revenue"
)

// PayoutService computes withdrawable balances and manages payout requests.
type PayoutService struct {
	Gyms    GymStore
	Payouts PayoutStore
	Events  Publisher
	Now     func() time.Time
}

// Balance is the owner-facing breakdown of a gym's earnings.
type Balance struct {
	GymID          uint64 `json:"gym_id"`
	GrossCents     int64  `json:"gross_cents"`
	OwnerCents     int64  `json:"owner_cents"`
	PlatformCents  int64  `json:"platform_cents"`
	CommittedCents int64  `json:"committed_cents"`
	AvailableCents int64  `json:"available_cents"`
}

func (s *PayoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AvailableBalance is the owner share of revenue-bearing bookings minus
// pending, processing and paid payouts.
func (s *PayoutService) AvailableBalance(ctx context.Context, gymID uint64) (int64, error) {
	gross, committed, err := s.Payouts.Balance(ctx, gymID)
	if err != nil {
		return 0, fromStore(err, "load balance", "gym")
	}
	return revenue.Available(gross, committed), nil
}

// Balance returns the breakdown for a gym the actor manages.
func (s *PayoutService) Balance(ctx context.Context, actor model.User, gymID uint64) (Balance, error) {
	if _, err := authorizeGym(ctx, s.Gyms, actor, gymID); err != nil {
		return Balance{}, err
	}
	gross, committed, err := s.Payouts.Balance(ctx, gymID)
	if err != nil {
		return Balance{}, fromStore(err, "load balance", "gym")
	}
	share := revenue.Split(gross)
	return Balance{
		GymID:          gymID,
		GrossCents:     share.Gross,
		OwnerCents:     share.Owner,
		PlatformCents:  share.Platform,
		CommittedCents: committed,
		AvailableCents: share.Owner - committed,
	}, nil
}

// RequestPayout records a Pending payout if the gym can afford it.  The
// balance check and the insert are atomic per gym, so concurrent requests
// can never withdraw more than the available balance.
func (s *PayoutService) RequestPayout(ctx context.Context, actor model.User, gymID uint64, amountCents int64) (model.Payout, error) {
	g, err := authorizeGym(ctx, s.Gyms, actor, gymID)
	if err != nil {
		return model.Payout{}, err
	}
	if amountCents <= 0 {
		metrics.RecordPayout("invalid")
		return model.Payout{}, fail(ErrValidation, "amount must be positive")
	}
	if !g.HasBankDetails() {
		metrics.RecordPayout("invalid")
		return model.Payout{}, fail(ErrValidation, "bank details are required before requesting a payout")
	}
	p, err := s.Payouts.CreateGuarded(ctx, gymID, amountCents, func(gross, committed int64) error {
		if avail := revenue.Available(gross, committed); amountCents > avail {
			return fail(ErrInsufficientBalance, "requested %d exceeds available balance %d", amountCents, avail)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			metrics.RecordPayout("insufficient_balance")
			return model.Payout{}, err
		}
		return model.Payout{}, fromStore(err, "create payout", "gym")
	}
	metrics.RecordPayout("ok")
	log.Ctx(ctx).Info().Uint64("gym_id", gymID).Int64("amount_cents", amountCents).Msg("payout requested")
	publish(ctx, s.Events, queue.PayoutRequested, payoutEvent(p, s.now()))
	return p, nil
}

// ListByGym lists the payouts of a gym the actor manages.
func (s *PayoutService) ListByGym(ctx context.Context, actor model.User, gymID uint64) ([]model.Payout, error) {
	if _, err := authorizeGym(ctx, s.Gyms, actor, gymID); err != nil {
		return nil, err
	}
	out, err := s.Payouts.ListByGym(ctx, gymID)
	return out, fromStore(err, "list payouts", "payout")
}

// AdminList lists payouts across gyms; status may be empty.
func (s *PayoutService) AdminList(ctx context.Context, status string) ([]model.Payout, error) {
	var filter *model.PayoutStatus
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParsePayoutStatus(status)
		if !ok {
			return nil, fail(ErrValidation, "unknown payout status %q", status)
		}
		filter = &st
	}
	out, err := s.Payouts.List(ctx, filter)
	return out, fromStore(err, "list payouts", "payout")
}

// AdminUpdate changes a payout's status.  Paid sets paidAt; Paid and
// Rejected payouts can no longer change.
func (s *PayoutService) AdminUpdate(ctx context.Context, id uint64, status, note string) (model.Payout, error) {
	next, ok := model.ParsePayoutStatus(status)
	if !ok {
		return model.Payout{}, fail(ErrValidation, "unknown payout status %q", status)
	}
	p, err := s.Payouts.GetByID(ctx, id)
	if err != nil {
		return model.Payout{}, fromStore(err, "load payout", "payout")
	}
	if p.Status.Final() {
		return model.Payout{}, fail(ErrConflict, "payout is already %s", p.Status)
	}
	note = strings.TrimSpace(note)
	if next == p.Status && note == p.AdminNote {
		return p, nil
	}
	now := s.now().UTC()
	var paidAt *time.Time
	if next == model.PayoutPaid {
		paidAt = &now
	}
	if err := s.Payouts.UpdateStatus(ctx, id, p.Status, next, note, paidAt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Payout{}, fail(ErrConflict, "payout changed concurrently")
		}
		return model.Payout{}, fromStore(err, "update payout", "payout")
	}
	p.Status, p.AdminNote, p.PaidAt = next, note, paidAt
	publish(ctx, s.Events, queue.PayoutStatusChanged, payoutEvent(p, now))
	return p, nil
}
