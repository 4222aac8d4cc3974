package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PublicRoutes are the route patterns reachable without a session.
var PublicRoutes = []string{
	"/health",
	"/health/db",
	"/api/v1/auth/login",
	"/api/v1/auth/logout",
}

// NewSkipper matches on the registered route pattern (c.Path()), not the
// raw URL, so "/api/v1/users/1" can never alias a public route. CORS
// preflight requests are always let through.
func NewSkipper(routes ...string) func(c echo.Context) bool {
	public := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		public[r] = struct{}{}
	}
	return func(c echo.Context) bool {
		if c.Request().Method == http.MethodOptions {
			return true
		}
		_, ok := public[c.Path()]
		return ok
	}
}

// AuthSkipper skips authentication for PublicRoutes.
var AuthSkipper = NewSkipper(PublicRoutes...)
