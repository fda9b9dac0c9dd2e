package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/domain"
	apierrors "go.pilab.hu/mcportal/errors"
)

const userContextKey = "mcportal.user"

// Authenticator validates a raw bearer token and returns the current user.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// extractBearerToken extracts the token from an Authorization header value.
func extractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the authenticated user in the echo context.
func RequireAuth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apierrors.NewUnauthorized("Not authenticated")
			}

			ctx := c.Request().Context()
			user, err := authn.Authenticate(ctx, raw)
			if err != nil {
				log.Ctx(ctx).Debug().Err(err).Str("path", c.Path()).Msg("Authentication failed")
				return apierrors.NewUnauthorized("Could not validate credentials")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok && user != nil
}
