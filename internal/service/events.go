package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/queue"
)

// publish emits an event and ignores delivery failures; the publisher has
// already logged them.
func publish(ctx context.Context, p Publisher, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, event); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("routing_key", key).Msg("event dropped")
	}
}

func bookingEvent(b model.Booking, prev model.BookingStatus, at time.Time) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:      b.ID,
		GymID:          b.GymID,
		PlanID:         b.PlanID,
		UserID:         b.UserID,
		MemberEmail:    b.MemberEmail,
		AmountCents:    b.AmountCents,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}

func payoutEvent(p model.Payout, at time.Time) queue.PayoutEvent {
	return queue.PayoutEvent{
		PayoutID:    p.ID,
		GymID:       p.GymID,
		AmountCents: p.AmountCents,
		Status:      string(p.Status),
		AdminNote:   p.AdminNote,
		OccurredAt:  at.UTC().Format(time.RFC3339),
	}
}
