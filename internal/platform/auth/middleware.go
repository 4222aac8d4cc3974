package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
)

type contextKey string

const (
	StaffIDKey   contextKey = "staff_id"
	UsernameKey  contextKey = "username"
	UserRolesKey contextKey = "user_roles"
	TokenKey     contextKey = "session_claims"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Principal is the staff account behind a session.
type Principal struct {
	ID       int64
	Username string
	Role     string
	Active   bool
}

// PrincipalLookup loads the current state of a staff account so that role
// changes and deactivation take effect on the next request.
type PrincipalLookup interface {
	LookupPrincipal(ctx context.Context, staffID int64) (*Principal, error)
}

type MiddlewareConfig struct {
	Sessions    *Sessions
	Revocations RevocationStore
	Lookup      PrincipalLookup
	Skipper     func(c echo.Context) bool
	Logger      zerolog.Logger
}

// Middleware authenticates requests by the session cookie, or a bearer token
// for API clients. Missing, invalid, expired or revoked tokens and unknown or
// inactive staff are all reported as unauthenticated.
func Middleware(cfg MiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			tokenStr := TokenFromRequest(c)
			if tokenStr == "" {
				return apperr.Unauthenticated("not authenticated")
			}

			claims, err := cfg.Sessions.Parse(tokenStr)
			if err != nil {
				return apperr.Unauthenticated("could not validate credentials")
			}

			ctx := c.Request().Context()
			if cfg.Revocations != nil && claims.ID != "" {
				revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					cfg.Logger.Error().Err(err).Msg("revocation lookup failed")
					return apperr.Unauthenticated("could not validate credentials")
				}
				if revoked {
					return apperr.Unauthenticated("session has been logged out")
				}
			}

			staffID, err := claims.StaffID()
			if err != nil {
				return apperr.Unauthenticated("could not validate credentials")
			}
			p, err := cfg.Lookup.LookupPrincipal(ctx, staffID)
			if err != nil || p == nil || !p.Active {
				return apperr.Unauthenticated("inactive or unknown account")
			}

			ctx = WithPrincipal(ctx, p)
			ctx = context.WithValue(ctx, TokenKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("staff_id", p.ID)

			return next(c)
		}
	}
}

// TokenFromRequest returns the session token from the cookie or a bearer header.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithPrincipal stores the authenticated staff member on ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, StaffIDKey, p.ID)
	ctx = context.WithValue(ctx, UsernameKey, p.Username)
	ctx = context.WithValue(ctx, UserRolesKey, []string{p.Role})
	return ctx
}

func StaffIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(StaffIDKey).(int64)
	return id
}

func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(UsernameKey).(string)
	return u
}

func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}

// ClaimsFromContext returns the parsed session token of the request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(TokenKey).(*Claims)
	return claims
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(ctx context.Context) bool {
	for _, r := range RolesFromContext(ctx) {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
