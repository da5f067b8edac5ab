package utils // package utils provides token issuing and credential helpers

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"

    "github.com/iliyamo/gymhub/internal/model"
)

const (
    AccessTokenTTL  = 15 * time.Minute   // lifetime of access tokens
    RefreshTokenTTL = 7 * 24 * time.Hour // lifetime of refresh tokens
)

var (
    // ErrTokenInvalid covers malformed tokens, bad signatures and wrong algorithms.
    ErrTokenInvalid = errors.New("token invalid")
    // ErrTokenExpired is returned when the signature is fine but exp has passed.
    ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the payload of an access token: who the caller is and
// which roles they held when the token was minted.
type AccessClaims struct {
    UserID uint64      `json:"id"`
    Roles  model.Roles `json:"roles"`
    jwt.RegisteredClaims
}

// RefreshClaims identifies the user only.  The random ID (jti) makes every
// refresh token unique so each one maps to its own ledger row.
type RefreshClaims struct {
    UserID uint64 `json:"id"`
    jwt.RegisteredClaims
}

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
    Token string    `json:"token"`
    Exp   time.Time `json:"expires"`
}

// TokenIssuer mints and verifies HS256 tokens.  Access and refresh tokens
// use different secrets so one can never be replayed as the other.
type TokenIssuer struct {
    accessSecret  []byte
    refreshSecret []byte
    now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string) *TokenIssuer {
    return &TokenIssuer{
        accessSecret:  []byte(accessSecret),
        refreshSecret: []byte(refreshSecret),
        now:           time.Now,
    }
}

// WithClock returns a copy of the issuer that reads time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
    cp := *t
    cp.now = now
    return &cp
}

// IssueAccessToken signs {id, roles} valid for AccessTokenTTL.
func (t *TokenIssuer) IssueAccessToken(u model.User) (IssuedToken, error) {
    now := t.now().UTC()
    exp := now.Add(AccessTokenTTL)
    claims := AccessClaims{
        UserID: u.ID,
        Roles:  u.Roles,
        RegisteredClaims: jwt.RegisteredClaims{
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
    if err != nil {
        return IssuedToken{}, fmt.Errorf("sign access token: %w", err)
    }
    return IssuedToken{Token: signed, Exp: exp}, nil
}

// IssueRefreshToken signs {id} valid for RefreshTokenTTL.  The caller is
// responsible for recording it in the session ledger.
func (t *TokenIssuer) IssueRefreshToken(u model.User) (IssuedToken, error) {
    now := t.now().UTC()
    exp := now.Add(RefreshTokenTTL)
    claims := RefreshClaims{
        UserID: u.ID,
        RegisteredClaims: jwt.RegisteredClaims{
            ID:        uuid.NewString(),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
    if err != nil {
        return IssuedToken{}, fmt.Errorf("sign refresh token: %w", err)
    }
    return IssuedToken{Token: signed, Exp: exp}, nil
}

// VerifyAccess checks an access token and returns its claims.
func (t *TokenIssuer) VerifyAccess(token string) (*AccessClaims, error) {
    var c AccessClaims
    if err := Verify(token, t.accessSecret, &c, t.now); err != nil {
        return nil, err
    }
    return &c, nil
}

// VerifyRefresh checks a refresh token and returns its claims.
func (t *TokenIssuer) VerifyRefresh(token string) (*RefreshClaims, error) {
    var c RefreshClaims
    if err := Verify(token, t.refreshSecret, &c, t.now); err != nil {
        return nil, err
    }
    return &c, nil
}

// Verify parses token into claims with HS256 and secret.  It performs no I/O
// and reduces every failure to ErrTokenExpired or ErrTokenInvalid.
func Verify(token string, secret []byte, claims jwt.Claims, now func() time.Time) error {
    if now == nil {
        now = time.Now
    }
    tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
        return secret, nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(now))
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return ErrTokenExpired
        }
        return ErrTokenInvalid
    }
    if !tok.Valid {
        return ErrTokenInvalid
    }
    return nil
}
