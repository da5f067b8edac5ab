package service

import (
	"context"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetRoles(ctx context.Context, id uint64, roles model.Roles) error
	SetLoginOTP(ctx context.Context, id uint64, code string, exp time.Time) error
	MarkVerified(ctx context.Context, id uint64) error
	// RecordOTPFailure counts a wrong login code and discards the code once
	// limit failures have been recorded against it.
	RecordOTPFailure(ctx context.Context, id uint64, limit int) error
	SetResetCode(ctx context.Context, id uint64, code string, exp time.Time) error
	ResetPassword(ctx context.Context, id uint64, hash string) error
	LinkGoogle(ctx context.Context, id uint64, googleID string, roles model.Roles) error
	UpdateProfile(ctx context.Context, id uint64, name, phone string) error
}

// SessionStore persists session ledger rows keyed by token hash.
type SessionStore interface {
	Insert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (model.Session, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type GymStore interface {
	Create(ctx context.Context, g *model.Gym) error
	Update(ctx context.Context, g *model.Gym) error
	GetByID(ctx context.Context, id uint64) (model.Gym, error)
	List(ctx context.Context, city string) ([]model.Gym, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Gym, error)
}

type PlanStore interface {
	Create(ctx context.Context, p *model.Plan) error
	Update(ctx context.Context, p *model.Plan) error
	GetByID(ctx context.Context, id uint64) (model.Plan, error)
	ListByGym(ctx context.Context, gymID uint64, activeOnly bool) ([]model.Plan, error)
}

// BookingStore persists bookings.  UpdateStatus must only apply when the
// stored status still equals from, and report repository.ErrConflict
// otherwise.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListByGym(ctx context.Context, gymID uint64) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error
}

// PayoutStore persists payouts.  CreateGuarded must run check and the
// insert atomically with respect to other CreateGuarded calls for the same
// gym.
type PayoutStore interface {
	Balance(ctx context.Context, gymID uint64) (gross, committed int64, err error)
	CreateGuarded(ctx context.Context, gymID uint64, amount int64, check func(gross, committed int64) error) (model.Payout, error)
	GetByID(ctx context.Context, id uint64) (model.Payout, error)
	ListByGym(ctx context.Context, gymID uint64) ([]model.Payout, error)
	List(ctx context.Context, status *model.PayoutStatus) ([]model.Payout, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.PayoutStatus, note string, paidAt *time.Time) error
}

type ReviewStore interface {
	Create(ctx context.Context, r *model.Review) error
	GetByID(ctx context.Context, id uint64) (model.Review, error)
	ListByGym(ctx context.Context, gymID uint64) ([]model.Review, error)
	Delete(ctx context.Context, id uint64) error
}

type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Ticket, error)
	List(ctx context.Context, status *model.TicketStatus) ([]model.Ticket, error)
	Reply(ctx context.Context, id uint64, status model.TicketStatus, reply string) error
}

type StatsStore interface {
	Counts(ctx context.Context, ownerID *uint64) (model.Counts, error)
}

// Mailer delivers one-time codes.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// GoogleVerifier checks a Google ID token against the configured audience.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (model.GoogleIdentity, error)
}

// Throttle reports whether an action keyed by key may run now, allowing at
// most one per window.
type Throttle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// Publisher emits domain events.  Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}
