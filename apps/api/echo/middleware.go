package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core/user"
)

// adminMiddleware only lets principals resolving to the admin role through.
func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(role user.Role) bool { return role == user.RoleResolvedAdmin })
}

// staffMiddleware lets admins and teachers through.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.Role.IsStaff)
}

func roleMiddleware(allowed func(user.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(user.Resolve(user.User{Roles: claims.Roles})) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
