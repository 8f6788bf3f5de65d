package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simsparts/sims-api/internal/core/authz"
)

// RequirePermission enforces that the authenticated user's merged grant
// allows action on resource. Must run after Auth.
func RequirePermission(resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			if !authz.HasPermission(roles, resource, action) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAnyRole enforces that the user holds at least one of the listed
// roles. Must run after Auth.
func RequireAnyRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			if !authz.HasAnyRole(roles, allowed) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
