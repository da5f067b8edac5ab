// Package memstore is an in-memory implementation of the service stores.
// It mirrors the MySQL repositories, including their sentinel errors and
// the per-gym atomicity of guarded payouts, and backs the service and
// handler tests.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
)

// DB holds every table behind one mutex.
type DB struct {
	mu  sync.Mutex
	now func() time.Time
	seq uint64

	users    map[uint64]model.User
	sessions map[string]model.Session
	gyms     map[uint64]model.Gym
	plans    map[uint64]model.Plan
	bookings map[uint64]model.Booking
	payouts  map[uint64]model.Payout
	reviews  map[uint64]model.Review
	tickets  map[uint64]model.Ticket

	otpFailures map[uint64]int
}

func New() *DB {
	return &DB{
		now:      time.Now,
		users:    map[uint64]model.User{},
		sessions: map[string]model.Session{},
		gyms:     map[uint64]model.Gym{},
		plans:    map[uint64]model.Plan{},
		bookings: map[uint64]model.Booking{},
		payouts:  map[uint64]model.Payout{},
		reviews:  map[uint64]model.Review{},
		tickets:  map[uint64]model.Ticket{},

		otpFailures: map[uint64]int{},
	}
}

func (db *DB) nextID() uint64 {
	db.seq++
	return db.seq
}

func (db *DB) Users() *Users       { return &Users{db} }
func (db *DB) Sessions() *Sessions { return &Sessions{db} }
func (db *DB) Gyms() *Gyms         { return &Gyms{db} }
func (db *DB) Plans() *Plans       { return &Plans{db} }
func (db *DB) Bookings() *Bookings { return &Bookings{db} }
func (db *DB) Payouts() *Payouts   { return &Payouts{db} }
func (db *DB) Reviews() *Reviews   { return &Reviews{db} }
func (db *DB) Tickets() *Tickets   { return &Tickets{db} }
func (db *DB) Stats() *Stats       { return &Stats{db} }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func sortedByID[T any](m map[uint64]T, keep func(T) bool) []T {
	ids := make([]uint64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func newestFirst[T any](in []T) []T {
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
	return in
}

var errNotFound = repository.ErrNotFound
