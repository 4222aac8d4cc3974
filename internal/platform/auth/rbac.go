package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/soudan/casebook/internal/platform/apperr"
)

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
// Admins always pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, has := range userRoles {
				if has == RoleAdmin {
					return next(c)
				}
				for _, required := range roles {
					if has == required {
						return next(c)
					}
				}
			}
			return apperr.Forbidden("required role: %s", strings.Join(roles, " or "))
		}
	}
}
