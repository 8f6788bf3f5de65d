package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simsparts/sims-api/internal/api/middleware"
	"github.com/simsparts/sims-api/internal/core/domain"
)

// ctxClaims extracts the token claims injected by the Auth middleware.
// Presence of claims with a username proves the middleware ran; anything else
// is a wiring error and rejects with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, _ := c.Get("claims").(*domain.Claims)
	if claims == nil || claims.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// clientIP resolves the caller address for audit events.
func clientIP(c echo.Context) string {
	return middleware.ClientIP(c.Request())
}
