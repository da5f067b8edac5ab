package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/metrics"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/repository"
	"github.com/iliyamo/gymhub/internal/utils"
)

const (
	minPasswordLen  = 6
	otpResendWindow = time.Minute
	maxOTPAttempts  = 5
)

// AuthService implements registration, the password, OTP and Google login
// flows, password recovery and the refresh/logout protocol.
type AuthService struct {
	Users    UserStore
	Ledger   *SessionLedger
	Tokens   *utils.TokenIssuer
	Google   GoogleVerifier
	Mailer   Mailer
	Throttle Throttle

	BcryptCost int
	// AutoVerify marks password registrations verified immediately.
	AutoVerify bool
	// StrictMail surfaces mail delivery failures instead of logging them.
	StrictMail bool
	Now        func() time.Time
}

// Session is the result of a completed login: the public user plus both
// tokens.  The refresh token is already recorded in the ledger.
type Session struct {
	User    model.PublicUser  `json:"user"`
	Access  utils.IssuedToken `json:"access"`
	Refresh utils.IssuedToken `json:"refresh"`
}

// AuthResult is either a Session or a notice that a code was mailed and
// must be confirmed through VerifyOTP.
type AuthResult struct {
	Session     *Session
	OTPRequired bool
	Email       string
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// requestedRole parses a self-service role.  Nobody may grant themselves
// admin.
func requestedRole(name string) (model.Roles, error) {
	if strings.TrimSpace(name) == "" {
		return model.RoleUser, nil
	}
	r, ok := model.ParseRole(name)
	if !ok {
		return 0, fail(ErrValidation, "unknown role %q", name)
	}
	if r == model.RoleAdmin {
		return 0, fail(ErrForbidden, "admin role cannot be self-assigned")
	}
	return r, nil
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil && !strings.ContainsAny(email, " <>")
}

// Register creates a password account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	role, err := requestedRole(in.Role)
	if err != nil {
		metrics.RecordAuth("register", "rejected")
		return AuthResult{}, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validEmail(email) {
		return AuthResult{}, fail(ErrValidation, "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return AuthResult{}, fail(ErrValidation, "password must be at least %d characters", minPasswordLen)
	}
	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Email:        email,
		PasswordHash: &hash,
		Roles:        role,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		IsVerified:   s.AutoVerify,
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return AuthResult{}, fromStore(err, "create user", "user")
	}
	metrics.RecordAuth("register", "ok")
	if !u.IsVerified {
		if err := s.issueLoginOTP(ctx, u); err != nil {
			return AuthResult{}, err
		}
		return AuthResult{OTPRequired: true, Email: u.Email}, nil
	}
	sess, err := s.startSession(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Session: sess}, nil
}

// Login checks a password.  Unverified accounts receive a login code
// instead of tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordAuth("login", "invalid_credentials")
		return AuthResult{}, fail(ErrUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.RecordAuth("login", "invalid_credentials")
		return AuthResult{}, fail(ErrUnauthenticated, "invalid credentials")
	}
	if err := s.migrateRoles(ctx, &u); err != nil {
		return AuthResult{}, err
	}
	if !u.IsVerified {
		if err := s.issueLoginOTP(ctx, u); err != nil {
			return AuthResult{}, err
		}
		metrics.RecordAuth("login", "otp_required")
		return AuthResult{OTPRequired: true, Email: u.Email}, nil
	}
	sess, err := s.startSession(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.RecordAuth("login", "ok")
	return AuthResult{Session: sess}, nil
}

// GoogleLogin verifies a Google ID token, then links the Google subject to
// the account with the same email or creates a new verified account.  The
// requested role is added to the role set.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken, role string) (*Session, error) {
	want, err := requestedRole(role)
	if err != nil {
		return nil, err
	}
	if s.Google == nil || strings.TrimSpace(idToken) == "" {
		return nil, fail(ErrAuthFailed, "google authentication failed")
	}
	id, err := s.Google.Verify(ctx, idToken)
	if err != nil || id.Subject == "" || id.Email == "" {
		log.Ctx(ctx).Info().Err(err).Msg("google id token rejected")
		metrics.RecordAuth("google", "failed")
		return nil, fail(ErrAuthFailed, "google authentication failed")
	}

	u, err := s.Users.GetByEmail(ctx, id.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = model.User{
			Email:      strings.ToLower(id.Email),
			GoogleID:   &id.Subject,
			Roles:      want,
			Name:       id.Name,
			IsVerified: true,
		}
		if err := s.Users.Create(ctx, &u); err != nil {
			return nil, fromStore(err, "create user", "user")
		}
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	default:
		if u.GoogleID != nil && *u.GoogleID != "" && *u.GoogleID != id.Subject {
			return nil, fail(ErrConflict, "account is linked to a different google identity")
		}
		u.MigrateLegacyRole()
		u.Roles = u.Roles.Add(want)
		if err := s.Users.LinkGoogle(ctx, u.ID, id.Subject, u.Roles); err != nil {
			return nil, fromStore(err, "link google", "user")
		}
		u.GoogleID = &id.Subject
		u.IsVerified = true
	}
	metrics.RecordAuth("google", "ok")
	return s.startSession(ctx, u)
}

// VerifyOTP confirms a login code.  A correct, unexpired code clears the
// code, marks the account verified and logs the user in.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fail(ErrValidation, "invalid or expired code")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckCode(u.OTPCode, u.OTPExpires, code, s.now()) {
		metrics.RecordAuth("verify_otp", "invalid_code")
		if u.OTPCode != nil {
			if err := s.Users.RecordOTPFailure(ctx, u.ID, maxOTPAttempts); err != nil {
				return nil, fromStore(err, "record otp failure", "user")
			}
		}
		return nil, fail(ErrValidation, "invalid or expired code")
	}
	if err := s.Users.MarkVerified(ctx, u.ID); err != nil {
		return nil, fromStore(err, "mark verified", "user")
	}
	u.IsVerified, u.OTPCode, u.OTPExpires = true, nil, nil
	if err := s.migrateRoles(ctx, &u); err != nil {
		return nil, err
	}
	metrics.RecordAuth("verify_otp", "ok")
	return s.startSession(ctx, u)
}

// ResendOTP mails a fresh login code, at most once per minute per email.
// Unknown emails are accepted silently.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fail(ErrValidation, "email is required")
	}
	if s.Throttle != nil {
		ok, err := s.Throttle.Allow(ctx, "otp:res:"+email, otpResendWindow)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("otp resend throttle unavailable")
		} else if !ok {
			return fail(ErrTooManyRequests, "please wait before requesting another code")
		}
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.issueLoginOTP(ctx, u)
}

// ForgotPassword mails a reset code.  The response never reveals whether
// the email belongs to an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	code, err := utils.NewOTP()
	if err != nil {
		return err
	}
	if err := s.Users.SetResetCode(ctx, u.ID, code, s.now().Add(utils.OTPTTL)); err != nil {
		return fromStore(err, "store reset code", "user")
	}
	return s.deliver(ctx, u.Email, "Reset your gymhub password",
		fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(utils.OTPTTL.Minutes())))
}

// ResetPassword sets a new password after checking the reset code, and ends
// every existing session of the account.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	if len(password) < minPasswordLen {
		return fail(ErrValidation, "password must be at least %d characters", minPasswordLen)
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrValidation, "invalid or expired code")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckCode(u.ResetCode, u.ResetExpires, code, s.now()) {
		return fail(ErrValidation, "invalid or expired code")
	}
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.ResetPassword(ctx, u.ID, hash); err != nil {
		return fromStore(err, "reset password", "user")
	}
	return s.Ledger.RevokeAll(ctx, u.ID)
}

// Refresh exchanges an active refresh token for a new access token.  The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.PublicUser, utils.IssuedToken, error) {
	deny := func(outcome string) (model.PublicUser, utils.IssuedToken, error) {
		metrics.RecordAuth("refresh", outcome)
		return model.PublicUser{}, utils.IssuedToken{}, fail(ErrUnauthenticated, "invalid refresh token")
	}
	if strings.TrimSpace(refreshToken) == "" {
		return deny("missing")
	}
	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return deny("invalid")
	}
	active, err := s.Ledger.IsActive(ctx, refreshToken)
	if err != nil {
		return model.PublicUser{}, utils.IssuedToken{}, err
	}
	if !active {
		return deny("revoked")
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return deny("user_gone")
	}
	if err != nil {
		return model.PublicUser{}, utils.IssuedToken{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.migrateRoles(ctx, &u); err != nil {
		return model.PublicUser{}, utils.IssuedToken{}, err
	}
	access, err := s.Tokens.IssueAccessToken(u)
	if err != nil {
		return model.PublicUser{}, utils.IssuedToken{}, err
	}
	metrics.RecordAuth("refresh", "ok")
	return u.Public(), access, nil
}

// Logout revokes the session of refreshToken, if any.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	return s.Ledger.Revoke(ctx, refreshToken)
}

// CurrentUser loads the account behind an access token.
func (s *AuthService) CurrentUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fromStore(err, "load user", "user")
	}
	return u, nil
}

// UpdateProfile edits the name and phone of the current user.
func (s *AuthService) UpdateProfile(ctx context.Context, id uint64, name, phone string) (model.User, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" {
		return model.User{}, fail(ErrValidation, "name is required")
	}
	if len(phone) > 32 {
		return model.User{}, fail(ErrValidation, "phone is too long")
	}
	if err := s.Users.UpdateProfile(ctx, id, name, phone); err != nil {
		return model.User{}, fromStore(err, "update profile", "user")
	}
	return s.CurrentUser(ctx, id)
}

// migrateRoles folds the legacy single role into the role set and persists
// the result.  Users that already have roles are left alone.
func (s *AuthService) migrateRoles(ctx context.Context, u *model.User) error {
	if !u.MigrateLegacyRole() {
		return nil
	}
	if err := s.Users.SetRoles(ctx, u.ID, u.Roles); err != nil {
		return fromStore(err, "migrate roles", "user")
	}
	log.Ctx(ctx).Info().Uint64("user_id", u.ID).Str("roles", u.Roles.String()).Msg("migrated legacy role")
	return nil
}

// startSession issues both tokens and records the refresh token.
func (s *AuthService) startSession(ctx context.Context, u model.User) (*Session, error) {
	access, err := s.Tokens.IssueAccessToken(u)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(u)
	if err != nil {
		return nil, err
	}
	if err := s.Ledger.RecordSession(ctx, u.ID, refresh.Token, refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: u.Public(), Access: access, Refresh: refresh}, nil
}

func (s *AuthService) issueLoginOTP(ctx context.Context, u model.User) error {
	code, err := utils.NewOTP()
	if err != nil {
		return err
	}
	if err := s.Users.SetLoginOTP(ctx, u.ID, code, s.now().Add(utils.OTPTTL)); err != nil {
		return fromStore(err, "store otp", "user")
	}
	return s.deliver(ctx, u.Email, "Your gymhub login code",
		fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(utils.OTPTTL.Minutes())))
}

// deliver sends a mail.  Failures are logged and swallowed unless
// StrictMail is set.
func (s *AuthService) deliver(ctx context.Context, to, subject, body string) error {
	if s.Mailer == nil {
		return nil
	}
	if err := s.Mailer.Send(ctx, to, subject, body); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("to", to).Msg("mail delivery failed")
		if s.StrictMail {
			return fmt.Errorf("send mail: %w", err)
		}
	}
	return nil
}
