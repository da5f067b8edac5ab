package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gymhub/internal/config"
)

func TestNew_FallsBackToLog(t *testing.T) {
	assert.IsType(t, Log{}, New(config.EmailConfig{}, false))
	assert.IsType(t, &SMTP{}, New(config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "a@example.com"}, false))
	assert.IsType(t, &SMTP{}, New(config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "a@example.com"}, true))
}

func TestNew_ProductionNeverLogsCodes(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	s := New(config.EmailConfig{}, true)
	err := s.Send(ctx, "a@example.com", "Password reset", "Your password reset code is 123456")
	assert.ErrorIs(t, err, ErrNoRelay)
	assert.NotContains(t, buf.String(), "123456")
}

func TestLog_WritesToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	require.NoError(t, Log{}.Send(ctx, "a@example.com", "Code", "Your code is 123456"))
	assert.Contains(t, buf.String(), "123456")
	assert.Contains(t, buf.String(), "a@example.com")
}

func TestSMTP_RejectsBadAddresses(t *testing.T) {
	s := &SMTP{cfg: config.EmailConfig{Host: "127.0.0.1", Port: 1, From: "not an address"}}
	err := s.Send(context.Background(), "a@example.com", "x", "y")
	assert.ErrorContains(t, err, "mail from")
}
