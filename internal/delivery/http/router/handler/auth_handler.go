// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"backoffice/internal/delivery/http/response"
	"backoffice/internal/delivery/http/session"
	"backoffice/internal/domain/entity"
	domainerrors "backoffice/internal/domain/errors"
	"backoffice/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const birthDateLayout = "2006-01-02"

// AuthHandler holds dependencies for the authentication pipeline handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

// loginRequest is the POST /auth/login payload.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// registerRequest is the POST /auth/register payload.
type registerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required"`
}

// verifyRequest is the POST /mfa/challenge payload.
type verifyRequest struct {
	Code string `json:"code" validate:"required"`
}

// sessionInfo is the public projection of the authentication session.
type sessionInfo struct {
	State       string `json:"state"`
	PrincipalID string `json:"principalId,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Redirect    string `json:"redirect,omitempty"`
}

func describeSession(auth *entity.AuthSession) sessionInfo {
	info := sessionInfo{State: auth.State().String()}
	if auth.State() == entity.StateAnonymous {
		return info
	}

	info.PrincipalID = auth.PrincipalID.String()
	info.Name = auth.PrincipalName
	info.Role = string(auth.Role)
	if auth.Redirect != nil {
		info.Redirect = auth.Redirect.URL()
	}

	return info
}

// LoginPage handles GET /login. Sessions that already passed a stage are sent
// forward: verified to their landing page, pending to the challenge.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	auth := session.Load(c)
	switch auth.State() {
	case entity.StateVerified:
		return c.Redirect(http.StatusFound, auth.Role.LandingPath())
	case entity.StatePendingMFA:
		return c.Redirect(http.StatusFound, "/mfa/challenge")
	default:
		return response.Success(c, http.StatusOK, describeSession(auth), "")
	}
}

// Login handles POST /auth/login, the first stage of the pipeline. Success
// leaves the session pending MFA; no access is granted yet.
func (h *AuthHandler) Login(c echo.Context) error {
	input := new(loginRequest)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(input); err != nil {
		return response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), domainerrors.ErrValidationFailed.Message())
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	auth := session.Load(c)
	auth.BeginLogin(output.User)
	if err := session.Save(c, auth); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"next": "/mfa/challenge",
	}, "驗證碼階段開始")
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	input := new(registerRequest)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), domainerrors.ErrValidationFailed.Message())
	}

	birthDate, err := time.Parse(birthDateLayout, input.BirthDate)
	if err != nil {
		return response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), "生日格式必須為 YYYY-MM-DD")
	}

	output, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		BirthDate: birthDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{
		"id":    output.User.ID.String(),
		"email": output.User.Email,
	}, "註冊成功")
}

// ChallengeStart handles GET /mfa/challenge. It generates a fresh one-time
// code for the pending principal and delivers it out-of-band. Any previously
// outstanding code is overwritten.
func (h *AuthHandler) ChallengeStart(c echo.Context) error {
	auth := session.Load(c)
	if auth.State() != entity.StatePendingMFA {
		return h.rejectStage(c, auth)
	}

	return h.issueChallenge(c, auth)
}

// Resend handles POST /mfa/resend, used after a delivery failure or an
// expired code. Semantically identical to starting the challenge over.
func (h *AuthHandler) Resend(c echo.Context) error {
	auth := session.Load(c)
	if auth.State() != entity.StatePendingMFA {
		return h.rejectStage(c, auth)
	}

	return h.issueChallenge(c, auth)
}

func (h *AuthHandler) issueChallenge(c echo.Context, auth *entity.AuthSession) error {
	output, err := h.uc.IssueChallenge(c.Request().Context(), &usecase.IssueChallengeInput{
		PrincipalID: auth.PrincipalID,
		Identity:    auth.Identity,
		DisplayName: auth.PrincipalName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	auth.SetChallenge(output.Code, output.ExpiresAt)
	if err := session.Save(c, auth); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"expiresAt": output.ExpiresAt.Format(time.RFC3339),
	}, "驗證碼已寄出")
}

// ChallengeVerify handles POST /mfa/challenge, the second stage of the
// pipeline. Success upgrades the session to fully verified and consumes the
// pending redirect exactly once.
func (h *AuthHandler) ChallengeVerify(c echo.Context) error {
	auth := session.Load(c)
	if auth.State() != entity.StatePendingMFA {
		return h.rejectStage(c, auth)
	}
	if !auth.HasChallenge() {
		return errors.WithStack(domainerrors.ErrNoActiveChallenge)
	}

	input := new(verifyRequest)
	if err := c.Bind(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(input); err != nil {
		return response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), domainerrors.ErrValidationFailed.Message())
	}

	err := h.uc.VerifyCode(c.Request().Context(), &usecase.VerifyCodeInput{
		PrincipalID: auth.PrincipalID,
		Identity:    auth.Identity,
		Submitted:   input.Code,
		Expected:    auth.PendingCode,
		ExpiresAt:   auth.PendingCodeExpiry,
	})
	if err != nil {
		// An expired code is dead; force a resend instead of letting the
		// client keep submitting it.
		if errors.Is(err, domainerrors.ErrExpiredCode) {
			auth.ClearChallenge()
			if saveErr := session.Save(c, auth); saveErr != nil {
				h.logger.Error("Failed to save session after expired code", slog.Any("error", saveErr))
			}
		}

		return errors.WithStack(err)
	}

	auth.CompleteVerification()
	redirect := auth.ConsumeRedirect()
	if err := session.Save(c, auth); err != nil {
		return errors.WithStack(err)
	}

	// A real redirect for browsers; the body still names the destination for
	// API clients that do not follow Location.
	c.Response().Header().Set(echo.HeaderLocation, redirect)

	return response.Success(c, http.StatusFound, map[string]string{
		"redirect": redirect,
	}, "驗證成功")
}

// rejectStage answers MFA endpoints hit outside the pending stage. A verified
// session is sent to its landing page; an anonymous one back to login.
func (h *AuthHandler) rejectStage(c echo.Context, auth *entity.AuthSession) error {
	if auth.State() == entity.StateVerified {
		return c.Redirect(http.StatusFound, auth.Role.LandingPath())
	}

	return c.Redirect(http.StatusFound, "/login")
}

// Logout handles POST /auth/logout. Idempotent: logging out an anonymous
// session succeeds quietly.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth := session.Load(c)
	if auth.State() != entity.StateAnonymous {
		h.uc.RecordLogout(c.Request().Context(), auth.PrincipalID, auth.Identity)
	}

	auth.Clear()
	if err := session.Destroy(c); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"redirect": "/login",
	}, "已登出")
}

// SessionInfo handles GET /session, exposing the current authentication
// stage without touching it.
func (h *AuthHandler) SessionInfo(c echo.Context) error {
	auth := session.Load(c)

	return response.Success(c, http.StatusOK, describeSession(auth), "")
}
