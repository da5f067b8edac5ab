package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/gymhub/internal/model"
)

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
    iss := NewTokenIssuer("access-secret", "refresh-secret")
    u := model.User{ID: 42, Roles: model.RoleOwner | model.RoleUser}

    tok, err := iss.IssueAccessToken(u)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), tok.Exp, 5*time.Second)

    claims, err := iss.VerifyAccess(tok.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), claims.UserID)
    assert.Equal(t, u.Roles, claims.Roles)
}

func TestTokenIssuer_RefreshTokensAreUnique(t *testing.T) {
    iss := NewTokenIssuer("access-secret", "refresh-secret")
    u := model.User{ID: 7}

    a, err := iss.IssueRefreshToken(u)
    require.NoError(t, err)
    b, err := iss.IssueRefreshToken(u)
    require.NoError(t, err)
    assert.NotEqual(t, a.Token, b.Token)
    assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), a.Exp, 5*time.Second)

    claims, err := iss.VerifyRefresh(a.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), claims.UserID)
}

func TestTokenIssuer_SecretsAreNotInterchangeable(t *testing.T) {
    iss := NewTokenIssuer("access-secret", "refresh-secret")
    refresh, err := iss.IssueRefreshToken(model.User{ID: 1})
    require.NoError(t, err)

    _, err = iss.VerifyAccess(refresh.Token)
    assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_Expired(t *testing.T) {
    past := time.Now().Add(-time.Hour)
    old := NewTokenIssuer("s", "r").WithClock(func() time.Time { return past })
    tok, err := old.IssueAccessToken(model.User{ID: 1})
    require.NoError(t, err)

    _, err = NewTokenIssuer("s", "r").VerifyAccess(tok.Token)
    assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_RejectsTamperingAndOtherAlgorithms(t *testing.T) {
    iss := NewTokenIssuer("s", "r")
    tok, err := iss.IssueAccessToken(model.User{ID: 1})
    require.NoError(t, err)

    _, err = iss.VerifyAccess(tok.Token + "x")
    assert.ErrorIs(t, err, ErrTokenInvalid)

    _, err = iss.VerifyAccess("not-a-jwt")
    assert.ErrorIs(t, err, ErrTokenInvalid)

    none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{UserID: 1,
        RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)
    _, err = iss.VerifyAccess(none)
    assert.ErrorIs(t, err, ErrTokenInvalid)
}
