// Package queue defines the domain events exchanged over RabbitMQ together
// with the publisher used by services and the audit consumer.
package queue

// Routing keys.  Each key is also the name of a durable queue.
const (
    BookingCreated       = "booking.created"
    BookingStatusChanged = "booking.status_changed"
    PayoutRequested      = "payout.requested"
    PayoutStatusChanged  = "payout.status_changed"
)

// RoutingKeys lists every queue the consumer drains.
var RoutingKeys = []string{BookingCreated, BookingStatusChanged, PayoutRequested, PayoutStatusChanged}

// BookingEvent is published when a booking is created or changes status.
// It carries enough information for downstream consumers to log, notify or
// trigger analytics without querying the primary database.
type BookingEvent struct {
    BookingID      uint64  `json:"booking_id"`
    GymID          uint64  `json:"gym_id"`
    PlanID         uint64  `json:"plan_id"`
    UserID         *uint64 `json:"user_id,omitempty"`
    MemberEmail    string  `json:"member_email"`
    AmountCents    int64   `json:"amount_cents"`
    Status         string  `json:"status"`
    PreviousStatus string  `json:"previous_status,omitempty"`
    OccurredAt     string  `json:"occurred_at"`
}

// PayoutEvent is published when a payout is requested or an admin changes
// its status.
type PayoutEvent struct {
    PayoutID    uint64 `json:"payout_id"`
    GymID       uint64 `json:"gym_id"`
    AmountCents int64  `json:"amount_cents"`
    Status      string `json:"status"`
    AdminNote   string `json:"admin_note,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}
