package model

import (
    "database/sql/driver"
    "encoding/json"
    "fmt"
    "strings"
    "time"
)

// Roles is the set of capabilities held by one account.  The roles are
// independent flags: a single user may be a member, a gym owner and an
// administrator at the same time.
type Roles uint8

const (
    RoleUser Roles = 1 << iota
    RoleOwner
    RoleAdmin
)

// roleNames lists every known role in a fixed order so that serialised
// sets are stable.
var roleNames = []struct {
    role Roles
    name string
}{
    {RoleUser, "user"},
    {RoleOwner, "owner"},
    {RoleAdmin, "admin"},
}

// ParseRole maps a single role name (case-insensitive) onto its flag.
func ParseRole(name string) (Roles, bool) {
    name = strings.ToLower(strings.TrimSpace(name))
    for _, rn := range roleNames {
        if rn.name == name {
            return rn.role, true
        }
    }
    return 0, false
}

// ParseRoles reads a comma separated list as stored in the MySQL SET column.
// Unknown names are ignored.
func ParseRoles(csv string) Roles {
    var out Roles
    for _, part := range strings.Split(csv, ",") {
        if r, ok := ParseRole(part); ok {
            out |= r
        }
    }
    return out
}

// Has reports whether every flag in r is present.
func (s Roles) Has(r Roles) bool { return r != 0 && s&r == r }

// Add returns the union of both sets.
func (s Roles) Add(r Roles) Roles { return s | r }

// Empty reports whether no role is held.
func (s Roles) Empty() bool { return s == 0 }

// Satisfies is the authorization predicate used by route guards: admin
// implicitly satisfies an owner requirement.
func (s Roles) Satisfies(required Roles) bool {
    if s.Has(required) {
        return true
    }
    return required == RoleOwner && s.Has(RoleAdmin)
}

// Names returns the role names in canonical order.
func (s Roles) Names() []string {
    out := make([]string, 0, len(roleNames))
    for _, rn := range roleNames {
        if s&rn.role != 0 {
            out = append(out, rn.name)
        }
    }
    return out
}

func (s Roles) String() string { return strings.Join(s.Names(), ",") }

func (s Roles) MarshalJSON() ([]byte, error) { return json.Marshal(s.Names()) }

func (s *Roles) UnmarshalJSON(b []byte) error {
    var names []string
    if err := json.Unmarshal(b, &names); err != nil {
        return err
    }
    var out Roles
    for _, n := range names {
        r, ok := ParseRole(n)
        if !ok {
            return fmt.Errorf("unknown role %q", n)
        }
        out |= r
    }
    *s = out
    return nil
}

// Value stores the set in MySQL SET format ("user,owner").
func (s Roles) Value() (driver.Value, error) { return s.String(), nil }

func (s *Roles) Scan(src any) error {
    switch v := src.(type) {
    case nil:
        *s = 0
    case []byte:
        *s = ParseRoles(string(v))
    case string:
        *s = ParseRoles(v)
    default:
        return fmt.Errorf("roles: unsupported scan type %T", src)
    }
    return nil
}

// User mirrors the `users` table.
//
// An account authenticates either with a password or through Google; at
// least one of PasswordHash and GoogleID is always set.  LegacyRole is the
// single-role column kept from the previous schema and is folded into Roles
// on the first authenticated use of the account.
type User struct {
    ID           uint64
    Email        string
    PasswordHash *string
    GoogleID     *string
    Roles        Roles
    LegacyRole   *string
    Name         string
    Phone        string
    IsVerified   bool
    OTPCode      *string
    OTPExpires   *time.Time
    ResetCode    *string
    ResetExpires *time.Time
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// HasCredential reports whether the account can authenticate at all.
func (u User) HasCredential() bool {
    return (u.PasswordHash != nil && *u.PasswordHash != "") || (u.GoogleID != nil && *u.GoogleID != "")
}

// MigrateLegacyRole copies the legacy role into the role set when the set is
// still empty.  It returns true when the user was changed and needs to be
// persisted.  Calling it again is a no-op.
func (u *User) MigrateLegacyRole() bool {
    if !u.Roles.Empty() || u.LegacyRole == nil {
        return false
    }
    r, ok := ParseRole(*u.LegacyRole)
    if !ok {
        return false
    }
    u.Roles = r
    return true
}

// PublicUser is the representation returned to clients.  It never carries
// the password hash or one-time codes.
type PublicUser struct {
    ID         uint64 `json:"id"`
    Email      string `json:"email"`
    Name       string `json:"name"`
    Phone      string `json:"phone,omitempty"`
    Roles      Roles  `json:"roles"`
    IsVerified bool   `json:"is_verified"`
    HasGoogle  bool   `json:"has_google"`
}

func (u User) Public() PublicUser {
    return PublicUser{
        ID:         u.ID,
        Email:      u.Email,
        Name:       u.Name,
        Phone:      u.Phone,
        Roles:      u.Roles,
        IsVerified: u.IsVerified,
        HasGoogle:  u.GoogleID != nil && *u.GoogleID != "",
    }
}

// Session models one row of the `sessions` ledger.  TokenHash is a keyed
// hash of the refresh token; the raw token is never persisted.
type Session struct {
    ID        uint64
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    IsRevoked bool
    CreatedAt time.Time
}

// Active reports whether the session may still be exchanged for access
// tokens at the given instant.
func (s Session) Active(now time.Time) bool {
    return !s.IsRevoked && now.Before(s.ExpiresAt)
}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
    Subject       string
    Email         string
    Name          string
    EmailVerified bool
}
