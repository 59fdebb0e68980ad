package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireKind returns middleware that rejects callers whose actor kind is
// not one of the given kinds. Admin principals always pass.
func RequireKind(kinds ...ActorKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if p.Kind == ActorAdmin {
				return next(c)
			}
			for _, k := range kinds {
				if p.Kind == k {
					return next(c)
				}
			}
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = string(k)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				"required actor kind: "+strings.Join(names, " or "))
		}
	}
}

// RequireRole returns middleware that checks if the caller has at least one
// of the specified roles. The admin role always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, required := range roles {
				for _, has := range p.Roles {
					if has == required || has == "admin" {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				"required role: "+strings.Join(roles, " or "))
		}
	}
}
