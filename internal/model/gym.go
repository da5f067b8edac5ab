package model

import "time"

// Gym represents a row in the `gyms` table.  OwnerID references the user
// that manages the gym; payouts for the gym go to the bank details stored
// here.
type Gym struct {
    ID                uint64    `json:"id"`
    OwnerID           uint64    `json:"owner_id"`
    Name              string    `json:"name"`
    City              string    `json:"city"`
    Address           string    `json:"address"`
    Description       string    `json:"description"`
    DayPassCents      int64     `json:"day_pass_cents"`
    BankAccountName   string    `json:"-"`
    BankAccountNumber string    `json:"-"`
    BankIFSC          string    `json:"-"`
    IsActive          bool      `json:"is_active"`
    CreatedAt         time.Time `json:"created_at"`
    UpdatedAt         time.Time `json:"updated_at"`
}

// HasBankDetails reports whether the gym can receive payouts.
func (g Gym) HasBankDetails() bool {
    return g.BankAccountName != "" && g.BankAccountNumber != "" && g.BankIFSC != ""
}

// Plan is a purchasable membership product offered by a gym.
type Plan struct {
    ID           uint64    `json:"id"`
    GymID        uint64    `json:"gym_id"`
    Name         string    `json:"name"`
    Sessions     int       `json:"sessions"`
    PriceCents   int64     `json:"price_cents"`
    ValidityDays int       `json:"validity_days"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// BaseDiscount is the saving a plan offers compared to buying the same
// number of day passes: 1 - price/(dayPass*sessions), clamped to [0,1].
func (p Plan) BaseDiscount(dayPassCents int64) float64 {
    full := dayPassCents * int64(p.Sessions)
    if full <= 0 {
        return 0
    }
    d := 1 - float64(p.PriceCents)/float64(full)
    switch {
    case d < 0:
        return 0
    case d > 1:
        return 1
    }
    return d
}
