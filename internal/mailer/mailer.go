// Package mailer delivers one-time codes by SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"github.com/iliyamo/gymhub/internal/config"
)

// ErrNoRelay is returned by every send when production runs without SMTP.
var ErrNoRelay = errors.New("mailer: no SMTP relay configured")

// Sender is implemented by SMTP, Log and Unavailable.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTP sends plain-text mail through the configured relay.
type SMTP struct {
	cfg config.EmailConfig
}

// New returns an SMTP sender.  Without a host it falls back to Log in
// development; in production codes must never reach the log, so every send
// fails instead.
func New(cfg config.EmailConfig, production bool) Sender {
	switch {
	case cfg.Host != "":
		return &SMTP{cfg: cfg}
	case production:
		log.Error().Msg("EMAIL_HOST not set; one-time codes cannot be delivered")
		return Unavailable{}
	default:
		log.Warn().Msg("EMAIL_HOST not set; one-time codes will be logged instead of mailed")
		return Log{}
	}
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Pass),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// Log writes mails to the logger.  Used in development when no relay is
// configured.
type Log struct{}

func (Log) Send(ctx context.Context, to, subject, body string) error {
	log.Ctx(ctx).Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("mail not sent: no SMTP relay")
	return nil
}

// Unavailable refuses every mail.
type Unavailable struct{}

func (Unavailable) Send(context.Context, string, string, string) error { return ErrNoRelay }
