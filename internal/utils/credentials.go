package utils

import (
    "crypto/hmac"
    "crypto/rand"
    "crypto/sha256"
    "crypto/subtle"
    "encoding/hex"
    "fmt"
    "math/big"
    "time"

    "golang.org/x/crypto/bcrypt"
)

// OTPTTL is how long a login or reset code stays valid.
const OTPTTL = 10 * time.Minute

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword compares a stored hash with a candidate password.  A nil
// hash (Google-only account) never matches.
func VerifyPassword(hash *string, plain string) bool {
    if hash == nil || *hash == "" {
        return false
    }
    return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(plain)) == nil
}

// NewOTP returns a uniformly random 6-digit numeric code.
func NewOTP() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1000000))
    if err != nil {
        return "", fmt.Errorf("generate otp: %w", err)
    }
    return fmt.Sprintf("%06d", n.Int64()), nil
}

// CheckCode reports whether code matches the stored one and the window has
// not elapsed.  An exact match is still rejected once expires has passed.
func CheckCode(stored *string, expires *time.Time, code string, now time.Time) bool {
    if stored == nil || expires == nil || *stored == "" || code == "" {
        return false
    }
    if !now.Before(*expires) {
        return false
    }
    return subtle.ConstantTimeCompare([]byte(*stored), []byte(code)) == 1
}

// HashRefresh returns the keyed SHA-256 digest of a refresh token as hex.
// Only this digest is stored in the session ledger, so a read of the table
// does not yield usable tokens.
func HashRefresh(key []byte, raw string) string {
    mac := hmac.New(sha256.New, key)
    mac.Write([]byte(raw))
    return hex.EncodeToString(mac.Sum(nil))
}
