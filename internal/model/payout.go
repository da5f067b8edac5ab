package model

import (
    "strings"
    "time"
)

// PayoutStatus is the processing state of a payout request.
type PayoutStatus string

const (
    PayoutPending    PayoutStatus = "Pending"
    PayoutProcessing PayoutStatus = "Processing"
    PayoutPaid       PayoutStatus = "Paid"
    PayoutRejected   PayoutStatus = "Rejected"
)

// ParsePayoutStatus accepts any casing of the four known statuses.
func ParsePayoutStatus(s string) (PayoutStatus, bool) {
    for _, st := range []PayoutStatus{PayoutPending, PayoutProcessing, PayoutPaid, PayoutRejected} {
        if strings.EqualFold(string(st), strings.TrimSpace(s)) {
            return st, true
        }
    }
    return "", false
}

// CommitsBalance reports whether a payout in this state is subtracted from
// the gym's withdrawable balance.
func (s PayoutStatus) CommitsBalance() bool {
    return s == PayoutPending || s == PayoutProcessing || s == PayoutPaid
}

// Final reports whether an admin may still change the payout.
func (s PayoutStatus) Final() bool { return s == PayoutPaid || s == PayoutRejected }

// CommittedPayoutStatuses lists the statuses that reduce the balance.
func CommittedPayoutStatuses() []PayoutStatus {
    return []PayoutStatus{PayoutPending, PayoutProcessing, PayoutPaid}
}

// Payout is a withdrawal request raised by a gym owner.
type Payout struct {
    ID          uint64       `json:"id"`
    GymID       uint64       `json:"gym_id"`
    AmountCents int64        `json:"amount_cents"`
    Status      PayoutStatus `json:"status"`
    AdminNote   string       `json:"admin_note,omitempty"`
    RequestedAt time.Time    `json:"requested_at"`
    PaidAt      *time.Time   `json:"paid_at,omitempty"`
    UpdatedAt   time.Time    `json:"updated_at"`
}

// Review is a member's rating of a gym, tied to exactly one completed booking.
type Review struct {
    ID        uint64    `json:"id"`
    BookingID uint64    `json:"booking_id"`
    GymID     uint64    `json:"gym_id"`
    UserID    *uint64   `json:"user_id,omitempty"`
    Rating    int       `json:"rating"`
    Comment   string    `json:"comment"`
    CreatedAt time.Time `json:"created_at"`
}

// TicketStatus tracks a support ticket.
type TicketStatus string

const (
    TicketOpen       TicketStatus = "open"
    TicketInProgress TicketStatus = "in_progress"
    TicketResolved   TicketStatus = "resolved"
    TicketClosed     TicketStatus = "closed"
)

func ParseTicketStatus(s string) (TicketStatus, bool) {
    st := TicketStatus(strings.ToLower(strings.TrimSpace(s)))
    switch st {
    case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
        return st, true
    }
    return "", false
}

// Ticket is a support request opened by any signed-in user.
type Ticket struct {
    ID         uint64       `json:"id"`
    UserID     uint64       `json:"user_id"`
    Subject    string       `json:"subject"`
    Message    string       `json:"message"`
    Status     TicketStatus `json:"status"`
    AdminReply string       `json:"admin_reply,omitempty"`
    CreatedAt  time.Time    `json:"created_at"`
    UpdatedAt  time.Time    `json:"updated_at"`
}
