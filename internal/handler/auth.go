package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gymhub/internal/config"
	"github.com/iliyamo/gymhub/internal/middleware"
	"github.com/iliyamo/gymhub/internal/model"
	"github.com/iliyamo/gymhub/internal/service"
	"github.com/iliyamo/gymhub/internal/utils"
)

// RefreshCookie carries the refresh token.  It is scoped to /auth so it is
// only sent to refresh and logout.
const RefreshCookie = "refreshToken"

// AuthHandler exposes the credential, OTP, Google and session endpoints.
type AuthHandler struct {
	Svc          *service.AuthService
	SecureCookie bool
	CookieDomain string
}

// NewAuthHandler hardens cookies (Secure, Domain) only in production.
func NewAuthHandler(svc *service.AuthService, cfg config.Config) *AuthHandler {
	h := &AuthHandler{Svc: svc}
	if cfg.IsProduction() {
		h.SecureCookie = true
		h.CookieDomain = cfg.CookieDomain
	}
	return h
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // user | owner
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleReq struct {
	IDToken string `json:"id_token"`
	Role    string `json:"role"`
}

type otpReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetReq struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type profileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type otpPendingResp struct {
	OTPRequired bool   `json:"otp_required"`
	Email       string `json:"email"`
	Message     string `json:"message"`
}

type refreshResp struct {
	User   model.PublicUser  `json:"user"`
	Access utils.IssuedToken `json:"access"`
}

// ----- cookies -----

func (h *AuthHandler) cookie(name, value, path string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   h.CookieDomain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}

func (h *AuthHandler) setSession(c echo.Context, s *service.Session) {
	c.SetCookie(h.cookie(middleware.AccessCookie, s.Access.Token, "/", s.Access.Exp))
	c.SetCookie(h.cookie(RefreshCookie, s.Refresh.Token, "/auth", s.Refresh.Exp))
}

func (h *AuthHandler) clearSession(c echo.Context) {
	c.SetCookie(h.cookie(middleware.AccessCookie, "", "/", time.Time{}))
	c.SetCookie(h.cookie(RefreshCookie, "", "/auth", time.Time{}))
}

// respond writes a completed session (cookies and body) or the 202 notice
// that an OTP was mailed.
func (h *AuthHandler) respond(c echo.Context, status int, res service.AuthResult) error {
	if res.OTPRequired {
		return c.JSON(http.StatusAccepted, otpPendingResp{
			OTPRequired: true,
			Email:       res.Email,
			Message:     "verification code sent",
		})
	}
	h.setSession(c, res.Session)
	return c.JSON(status, res.Session)
}

// refreshToken reads the refresh cookie, falling back to the JSON body for
// clients without cookies.
func refreshToken(c echo.Context) string {
	if ck, err := c.Cookie(RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req refreshReq
	_ = c.Bind(&req)
	return req.RefreshToken
}

// ----- endpoints -----

// Register creates an account.  201 with a session, or 202 when the
// account must confirm an emailed code first.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Svc.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, res)
}

func (h *AuthHandler) Google(c echo.Context) error {
	var req googleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.Svc.GoogleLogin(c.Request().Context(), req.IDToken, req.Role)
	if err != nil {
		return err
	}
	h.setSession(c, s)
	return c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req otpReq
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.Svc.VerifyOTP(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		return err
	}
	h.setSession(c, s)
	return c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req otpReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists a new code was sent"})
}

// ForgotPassword always answers 200 so accounts cannot be enumerated.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req otpReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists a reset code was sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Svc.ResetPassword(c.Request().Context(), req.Email, req.Code, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Refresh issues a new access token for an active session.  The refresh
// token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	user, access, err := h.Svc.Refresh(c.Request().Context(), refreshToken(c))
	if err != nil {
		return err
	}
	c.SetCookie(h.cookie(middleware.AccessCookie, access.Token, "/", access.Exp))
	return c.JSON(http.StatusOK, refreshResp{User: user, Access: access})
}

// Logout revokes the presented session and clears both cookies even when
// revocation fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.Svc.Logout(c.Request().Context(), refreshToken(c))
	h.clearSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.Public())
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.Svc.UpdateProfile(c.Request().Context(), u.ID, req.Name, req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated.Public())
}
