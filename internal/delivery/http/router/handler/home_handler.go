package handler

import (
	"net/http"

	"backoffice/internal/delivery/http/middleware"
	"backoffice/internal/delivery/http/response"
	"backoffice/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports service liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "")
}

// HomeHandler serves the landing endpoints behind the access guard.
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler instance.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// CustomerLanding handles GET /customer, the post-login destination for
// customer accounts.
func (h *HomeHandler) CustomerLanding(c echo.Context) error {
	auth, ok := c.Get(middleware.ContextKeyAuth).(*entity.AuthSession)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"name": auth.PrincipalName,
		"role": string(auth.Role),
	}, "歡迎回來")
}
