package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gymhub/internal/model"
)

func TestTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com", model.RoleUser)
	b := f.user(t, "b@example.com", model.RoleOwner)

	_, err := f.tickets.Create(ctx, a, "  ", "help")
	assert.ErrorIs(t, err, ErrValidation)

	ta, err := f.tickets.Create(ctx, a, "Refund", "Please refund booking 12")
	require.NoError(t, err)
	assert.Equal(t, model.TicketOpen, ta.Status)
	_, err = f.tickets.Create(ctx, b, "Payout delay", "Still pending")
	require.NoError(t, err)

	mine, err := f.tickets.ListMine(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	replied, err := f.tickets.AdminReply(ctx, ta.ID, "resolved", "Refunded")
	require.NoError(t, err)
	assert.Equal(t, model.TicketResolved, replied.Status)

	kept, err := f.tickets.AdminReply(ctx, ta.ID, "", "Follow-up")
	require.NoError(t, err)
	assert.Equal(t, model.TicketResolved, kept.Status)

	_, err = f.tickets.AdminReply(ctx, ta.ID, "lost", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.tickets.AdminReply(ctx, 999, "closed", "")
	assert.ErrorIs(t, err, ErrNotFound)

	open, err := f.tickets.AdminList(ctx, "open")
	require.NoError(t, err)
	assert.Len(t, open, 1)
	_, err = f.tickets.AdminList(ctx, "lost")
	assert.ErrorIs(t, err, ErrValidation)
}
