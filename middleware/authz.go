package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	apierrors "go.pilab.hu/mcportal/errors"
	"go.pilab.hu/mcportal/internal/auth/rbac"
)

// RequireAdmin must run after RequireAuth. Authenticated users without the
// admin flag get 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return apierrors.NewUnauthorized("Not authenticated")
			}
			if !rbac.IsAdmin(user) {
				log.Ctx(c.Request().Context()).Warn().
					Str("userID", user.ID).
					Str("path", c.Path()).
					Msg("Admin access denied")
				return apierrors.NewForbidden("Admin access required")
			}
			return next(c)
		}
	}
}
