// Package google verifies Google Sign-In ID tokens.
package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/iliyamo/gymhub/internal/model"
)

var (
	ErrNotConfigured   = errors.New("google sign-in is not configured")
	ErrEmailUnverified = errors.New("google account email is not verified")
)

// Verifier checks ID tokens against Google's public keys and the client id
// of this application.
type Verifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{audience: clientID, validate: idtoken.Validate}
}

// Verify returns the identity carried by a valid token.
func (v *Verifier) Verify(ctx context.Context, token string) (model.GoogleIdentity, error) {
	if v.audience == "" {
		return model.GoogleIdentity{}, ErrNotConfigured
	}
	p, err := v.validate(ctx, token, v.audience)
	if err != nil {
		return model.GoogleIdentity{}, fmt.Errorf("validate id token: %w", err)
	}
	id := model.GoogleIdentity{Subject: p.Subject}
	id.Email, _ = p.Claims["email"].(string)
	id.Name, _ = p.Claims["name"].(string)
	id.EmailVerified, _ = p.Claims["email_verified"].(bool)
	if !id.EmailVerified {
		return model.GoogleIdentity{}, ErrEmailUnverified
	}
	return id, nil
}
