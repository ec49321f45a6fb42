package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"clinic-booking-api/internal/auth"
	"clinic-booking-api/internal/model"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to a request after the
// bearer token has been verified.
type Principal struct {
	ID    string
	Role  model.Role
	Email string
}

// RequireAuth extracts and verifies the bearer access token and stores the
// principal on the request context.
func RequireAuth(tokens *auth.Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// token from Authorization: Bearer <jwt>
			raw := ""
			if hdr := c.Request().Header.Get("Authorization"); strings.HasPrefix(hdr, "Bearer ") {
				raw = strings.TrimPrefix(hdr, "Bearer ")
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, err := tokens.Parse(raw, auth.KindAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid/expired token")
			}

			c.Set(principalKey, Principal{ID: claims.Subject, Role: claims.Role, Email: claims.Email})
			return next(c)
		}
	}
}

// RequireRole gates a route on role membership. It must run after RequireAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
			}
			if !Allowed(p.Role, roles) {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// Allowed is the whole authorization decision: pure and unit-testable.
func Allowed(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}
