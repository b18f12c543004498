package middleware

import (
	"log/slog"
	"net/http"

	"backoffice/internal/delivery/http/response"
	"backoffice/internal/delivery/http/session"
	"backoffice/internal/domain/entity"
	domainerrors "backoffice/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

const (
	// ContextKeyAuth is the echo.Context key the guard stores the verified
	// session under, so handlers never re-read the cookie themselves.
	ContextKeyAuth = "auth_session"

	loginPath     = "/login"
	challengePath = "/mfa/challenge"
)

// AccessGuard enforces the authentication state machine at the routing layer.
// Protected groups mount it wholesale, so a handler cannot be reached without
// passing through it; forgetting a per-route annotation is impossible.
type AccessGuard struct {
	logger *slog.Logger
}

// NewAccessGuard creates the access guard middleware.
func NewAccessGuard(logger *slog.Logger) *AccessGuard {
	return &AccessGuard{logger: logger}
}

// RequireVerified admits only fully verified sessions. Anything less is
// bounced to the stage it still has to complete, with the original
// destination captured for the post-verification redirect.
func (g *AccessGuard) RequireVerified(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := session.Load(c)

		switch auth.State() {
		case entity.StateVerified:
			c.Set(ContextKeyAuth, auth)

			return next(c)
		case entity.StatePendingMFA:
			return g.bounce(c, auth, challengePath)
		default:
			return g.bounce(c, auth, loginPath)
		}
	}
}

// RequireRole admits only verified sessions carrying the given role. It must
// be mounted after RequireVerified.
func (g *AccessGuard) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth, ok := c.Get(ContextKeyAuth).(*entity.AuthSession)
			if !ok {
				return response.Unauthorized(c,
					domainerrors.ErrSessionInvalid.ErrorCode(), domainerrors.ErrSessionInvalid.Message())
			}

			if auth.Role != role {
				g.logger.Warn("Role check failed",
					slog.String("userID", auth.PrincipalID.String()),
					slog.String("role", string(auth.Role)),
					slog.String("required", string(role)),
				)

				return response.Forbidden(c,
					domainerrors.ErrForbidden.ErrorCode(), domainerrors.ErrForbidden.Message())
			}

			return next(c)
		}
	}
}

// bounce captures the denied destination and sends the client to the next
// pipeline stage. Browser-style GETs get a redirect; everything else gets a
// 401 naming the stage to complete.
func (g *AccessGuard) bounce(c echo.Context, auth *entity.AuthSession, target string) error {
	if c.Request().Method == http.MethodGet {
		auth.CaptureRedirect(c.Request().URL.Path, c.QueryParams())
		if err := session.Save(c, auth); err != nil {
			// The bounce itself still works; only the post-verification replay
			// is lost, so name the destination for forensics.
			g.logger.Error("Failed to save session during bounce", slog.Any("error", err))
			g.logger.Debug("Captured destination lost",
				slog.String("destination", c.Request().URL.RequestURI()),
				slog.String("stage", target),
			)
		}

		return c.Redirect(http.StatusFound, target)
	}

	return response.Error(c, http.StatusUnauthorized,
		domainerrors.ErrSessionInvalid.ErrorCode(), domainerrors.ErrSessionInvalid.Message(), "next="+target)
}
