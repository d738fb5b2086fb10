package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles carried in the identity provider's "role" claim.
const (
	RoleVendor   = "VENDOR"
	RoleEmployee = "EMPLOYEE"
)

// RequireRole returns a middleware that enforces that the authenticated
// actor has one of the specified roles.  It assumes Identity has
// already stored the role in the context; requests with a missing or
// disallowed role are rejected with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
