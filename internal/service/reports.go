package service

import (
	"context"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/revenue"
)

// ReportService builds the dashboard and the accounting ledger.  Both use
// revenue.Split so they agree with the payout guard.
type ReportService struct {
	Gyms     GymStore
	Bookings BookingStore
	Payouts  PayoutStore
	Stats    StatsStore
}

// DashboardStats summarises either one owner's gyms or the platform.
type DashboardStats struct {
	Scope         string           `json:"scope"`
	Gyms          int64            `json:"gyms"`
	Plans         int64            `json:"plans"`
	Bookings      map[string]int64 `json:"bookings"`
	GrossCents    int64            `json:"gross_cents"`
	OwnerCents    int64            `json:"owner_cents"`
	PlatformCents int64            `json:"platform_cents"`
}

// LedgerRow is one booking with its revenue split.  Cancelled bookings are
// listed but do not count toward the totals.
type LedgerRow struct {
	BookingID   uint64              `json:"booking_id"`
	MemberName  string              `json:"member_name"`
	Status      model.BookingStatus `json:"status"`
	BookedAt    time.Time           `json:"booked_at"`
	Counts      bool                `json:"counts_toward_revenue"`
	revenue.Share
}

type Ledger struct {
	GymID          uint64         `json:"gym_id"`
	Rows           []LedgerRow    `json:"rows"`
	Totals         revenue.Share  `json:"totals"`
	Payouts        []model.Payout `json:"payouts"`
	CommittedCents int64          `json:"committed_cents"`
	AvailableCents int64          `json:"available_cents"`
}

// Dashboard returns platform-wide figures for admins and per-owner figures
// otherwise.
func (s *ReportService) Dashboard(ctx context.Context, actor model.User) (DashboardStats, error) {
	scope := "platform"
	var ownerID *uint64
	if !actor.Roles.Has(model.RoleAdmin) {
		id := actor.ID
		ownerID = &id
		scope = "owner"
	}
	c, err := s.Stats.Counts(ctx, ownerID)
	if err != nil {
		return DashboardStats{}, fromStore(err, "load stats", "stats")
	}
	share := revenue.Split(c.GrossCents)
	byStatus := map[string]int64{}
	for _, st := range []model.BookingStatus{model.BookingUpcoming, model.BookingActive, model.BookingCompleted, model.BookingCancelled} {
		byStatus[string(st)] = c.Bookings[st]
	}
	return DashboardStats{
		Scope:         scope,
		Gyms:          c.Gyms,
		Plans:         c.Plans,
		Bookings:      byStatus,
		GrossCents:    share.Gross,
		OwnerCents:    share.Owner,
		PlatformCents: share.Platform,
	}, nil
}

// Ledger lists every booking of a gym with its split, plus the payouts.
// Totals split the summed gross, which is what the payout guard uses.
func (s *ReportService) Ledger(ctx context.Context, actor model.User, gymID uint64) (Ledger, error) {
	if _, err := authorizeGym(ctx, s.Gyms, actor, gymID); err != nil {
		return Ledger{}, err
	}
	bookings, err := s.Bookings.ListByGym(ctx, gymID)
	if err != nil {
		return Ledger{}, fromStore(err, "list bookings", "booking")
	}
	payouts, err := s.Payouts.ListByGym(ctx, gymID)
	if err != nil {
		return Ledger{}, fromStore(err, "list payouts", "payout")
	}

	l := Ledger{GymID: gymID, Rows: make([]LedgerRow, 0, len(bookings)), Payouts: payouts}
	var gross int64
	for _, b := range bookings {
		counts := b.Status.CountsTowardRevenue()
		if counts {
			gross += b.AmountCents
		}
		l.Rows = append(l.Rows, LedgerRow{
			BookingID:  b.ID,
			MemberName: b.MemberName,
			Status:     b.Status,
			BookedAt:   b.BookedAt,
			Counts:     counts,
			Share:      revenue.Split(b.AmountCents),
		})
	}
	for _, p := range payouts {
		if p.Status.CommitsBalance() {
			l.CommittedCents += p.AmountCents
		}
	}
	l.Totals = revenue.Split(gross)
	l.AvailableCents = l.Totals.Owner - l.CommittedCents
	return l, nil
}
