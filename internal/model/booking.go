package model

import (
    "errors"
    "strings"
    "time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
    BookingUpcoming  BookingStatus = "upcoming"
    BookingActive    BookingStatus = "active"
    BookingCompleted BookingStatus = "completed"
    BookingCancelled BookingStatus = "cancelled"
)

// ErrIllegalTransition is returned when a status change is not an edge of
// the booking state machine.
var ErrIllegalTransition = errors.New("illegal booking status transition")

// bookingTransitions lists the permitted moves.  Completed and cancelled
// bookings are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
    BookingUpcoming: {BookingActive, BookingCancelled},
    BookingActive:   {BookingCompleted, BookingCancelled},
}

// ParseBookingStatus validates a status supplied by a client.
func ParseBookingStatus(s string) (BookingStatus, bool) {
    st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
    switch st {
    case BookingUpcoming, BookingActive, BookingCompleted, BookingCancelled:
        return st, true
    }
    return "", false
}

// CanTransition reports whether moving from s to next is allowed.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
    for _, to := range bookingTransitions[s] {
        if to == next {
            return true
        }
    }
    return false
}

func (s BookingStatus) Terminal() bool { return len(bookingTransitions[s]) == 0 }

// CountsTowardRevenue reports whether a booking in this state contributes
// to the owner's earnings.
func (s BookingStatus) CountsTowardRevenue() bool {
    return s == BookingUpcoming || s == BookingActive || s == BookingCompleted
}

// RevenueStatuses is the set of statuses that count toward earnings, in the
// form repositories need for IN (...) clauses.
func RevenueStatuses() []BookingStatus {
    return []BookingStatus{BookingUpcoming, BookingActive, BookingCompleted}
}

// Booking records one member's purchase of a plan at a gym.
//
// Fields:
//  UserID      – the signed-in purchaser, nil for guest checkouts.
//  AmountCents – price paid, copied from the plan at purchase time.
//  ValidFrom/ValidTo – membership validity window.
type Booking struct {
    ID          uint64        `json:"id"`
    GymID       uint64        `json:"gym_id"`
    PlanID      uint64        `json:"plan_id"`
    UserID      *uint64       `json:"user_id,omitempty"`
    MemberName  string        `json:"member_name"`
    MemberEmail string        `json:"member_email"`
    AmountCents int64         `json:"amount_cents"`
    Status      BookingStatus `json:"status"`
    BookedAt    time.Time     `json:"booked_at"`
    ValidFrom   time.Time     `json:"valid_from"`
    ValidTo     time.Time     `json:"valid_to"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   time.Time     `json:"updated_at"`
}

// Transition moves the booking to next if the state machine allows it.
func (b *Booking) Transition(next BookingStatus) error {
    if !b.Status.CanTransition(next) {
        return ErrIllegalTransition
    }
    b.Status = next
    return nil
}

// InitialBookingStatus picks the starting state from the validity window.
func InitialBookingStatus(validFrom, now time.Time) BookingStatus {
    if validFrom.After(now) {
        return BookingUpcoming
    }
    return BookingActive
}
