package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simsparts/sims-api/internal/api/metrics"
	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

// Auth validates the bearer token and injects claims into context. The check
// is strict: a structurally valid refresh token is rejected here even though
// the verifier accepts untyped legacy tokens.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := ExtractToken(c)
			if tok == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			claims, err := tokens.VerifyAccessToken(tok)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("access", "invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Type == domain.TokenTypeRefresh {
				metrics.TokenVerificationsTotal.WithLabelValues("access", "wrong_type").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("access", "valid").Inc()

			c.Set("claims", claims)
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("roles", claims.Roles)

			return next(c)
		}
	}
}
