package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gymhub/internal/model"
)

func TestReports_DashboardScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", model.RoleOwner)
	rival := f.user(t, "rival@example.com", model.RoleOwner)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)

	g, p := f.gym(t, owner, 10000)
	f.completedBooking(t, owner, nil, g, p)
	rg, rp := f.gym(t, rival, 3333)
	b, err := f.bookings.Create(ctx, nil, BookingInput{GymID: rg.ID, PlanID: rp.ID, MemberName: "X", MemberEmail: "x@example.com"})
	require.NoError(t, err)
	_, err = f.bookings.UpdateStatus(ctx, rival, b.ID, "cancelled")
	require.NoError(t, err)

	mine, err := f.reports.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{
		Scope: "owner", Gyms: 1, Plans: 1,
		Bookings:   map[string]int64{"upcoming": 0, "active": 0, "completed": 1, "cancelled": 0},
		GrossCents: 10000, OwnerCents: 8500, PlatformCents: 1500,
	}, mine)

	platform, err := f.reports.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "platform", platform.Scope)
	assert.EqualValues(t, 2, platform.Gyms)
	assert.EqualValues(t, 1, platform.Bookings["cancelled"])
	assert.EqualValues(t, 10000, platform.GrossCents, "cancelled bookings earn nothing")
}

func TestReports_LedgerAgreesWithPayoutGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", model.RoleOwner)
	g, p := f.gym(t, owner, 999)
	for i := 0; i < 3; i++ {
		f.completedBooking(t, owner, nil, g, p)
	}
	_, err := f.payouts.RequestPayout(ctx, owner, g.ID, 1000)
	require.NoError(t, err)

	l, err := f.reports.Ledger(ctx, owner, g.ID)
	require.NoError(t, err)
	require.Len(t, l.Rows, 3)
	for _, r := range l.Rows {
		assert.Equal(t, r.Gross, r.Owner+r.Platform)
	}
	assert.EqualValues(t, 2997, l.Totals.Gross)
	assert.EqualValues(t, 1000, l.CommittedCents)

	avail, err := f.payouts.AvailableBalance(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, avail, l.AvailableCents)

	rival := f.user(t, "rival@example.com", model.RoleOwner)
	_, err = f.reports.Ledger(ctx, rival, g.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
