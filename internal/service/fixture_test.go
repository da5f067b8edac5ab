package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/gymhub/internal/memstore"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/utils"
)

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

var codeRE = regexp.MustCompile(`\b\d{6}\b`)

// lastCode returns the one-time code of the most recent mail.
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	code := codeRE.FindString(m.sent[len(m.sent)-1].body)
	require.NotEmpty(t, code)
	return code
}

type fakeGoogle struct {
	ids map[string]model.GoogleIdentity
}

func (g fakeGoogle) Verify(_ context.Context, token string) (model.GoogleIdentity, error) {
	id, ok := g.ids[token]
	if !ok {
		return model.GoogleIdentity{}, errors.New("token rejected")
	}
	return id, nil
}

type fakeThrottle struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeThrottle) Allow(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type fixture struct {
	db     *memstore.DB
	now    time.Time
	mail   *fakeMailer
	events *fakePublisher
	tokens *utils.TokenIssuer

	auth     *AuthService
	catalog  *CatalogService
	bookings *BookingService
	payouts  *PayoutService
	reviews  *ReviewService
	tickets  *TicketService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:     memstore.New(),
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		mail:   &fakeMailer{},
		events: &fakePublisher{},
	}
	clock := func() time.Time { return f.now }
	f.tokens = utils.NewTokenIssuer("access-secret", "refresh-secret").WithClock(clock)
	f.auth = &AuthService{
		Users:      f.db.Users(),
		Ledger:     NewSessionLedger(f.db.Sessions(), "ledger-key").WithClock(clock),
		Tokens:     f.tokens,
		Google:     fakeGoogle{ids: map[string]model.GoogleIdentity{}},
		Mailer:     f.mail,
		Throttle:   &fakeThrottle{seen: map[string]bool{}},
		BcryptCost: bcrypt.MinCost,
		AutoVerify: true,
		Now:        clock,
	}
	f.catalog = &CatalogService{Gyms: f.db.Gyms(), Plans: f.db.Plans()}
	f.bookings = &BookingService{Gyms: f.db.Gyms(), Plans: f.db.Plans(), Bookings: f.db.Bookings(), Events: f.events, Now: clock}
	f.payouts = &PayoutService{Gyms: f.db.Gyms(), Payouts: f.db.Payouts(), Events: f.events, Now: clock}
	f.reviews = &ReviewService{Bookings: f.db.Bookings(), Reviews: f.db.Reviews()}
	f.tickets = &TicketService{Tickets: f.db.Tickets()}
	f.reports = &ReportService{Gyms: f.db.Gyms(), Bookings: f.db.Bookings(), Payouts: f.db.Payouts(), Stats: f.db.Stats()}
	return f
}

func (f *fixture) user(t *testing.T, email string, roles model.Roles) model.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	return f.db.Users().Put(model.User{Email: email, PasswordHash: &hash, Roles: roles, Name: email, IsVerified: true})
}

// gym creates an active gym with bank details and one plan priced at
// priceCents.
func (f *fixture) gym(t *testing.T, owner model.User, priceCents int64) (model.Gym, model.Plan) {
	t.Helper()
	ctx := context.Background()
	g, err := f.catalog.CreateGym(ctx, owner, GymInput{
		Name: "Iron Temple", City: "Pune", DayPassCents: 500,
		BankAccountName: "Iron Temple LLP", BankAccountNumber: "000123456789", BankIFSC: "hdfc0001234",
	})
	require.NoError(t, err)
	p, err := f.catalog.CreatePlan(ctx, owner, PlanInput{GymID: g.ID, Name: "Monthly", Sessions: 30, PriceCents: priceCents, ValidityDays: 30})
	require.NoError(t, err)
	return g, p
}

// completedBooking books plan and walks it to completed.
func (f *fixture) completedBooking(t *testing.T, owner model.User, buyer *model.User, g model.Gym, p model.Plan) model.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, buyer, BookingInput{GymID: g.ID, PlanID: p.ID, MemberName: "Asha", MemberEmail: "asha@example.com"})
	require.NoError(t, err)
	b, err = f.bookings.UpdateStatus(ctx, owner, b.ID, "completed")
	require.NoError(t, err)
	return b
}
