package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

const currentUserKey = "current_user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// BearerAuth resolves "Authorization: Bearer <token>" to a user and stores it
// on the echo context. Every failure short-circuits with 401.
func BearerAuth(auth Authenticator, logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, domain.ErrUnauthenticated)
			}
			ctx := c.Request().Context()
			user, err := auth.Authenticate(ctx, token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired),
					errors.Is(err, domain.ErrMalformedToken),
					errors.Is(err, domain.ErrUnauthenticated):
					return unauthorized(c, err)
				default:
					logger.Error(ctx, "authentication lookup failed", "error", err.Error())
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": domain.ErrInternal.Error()})
				}
			}
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by BearerAuth.
func CurrentUser(c echo.Context) (domain.User, bool) {
	user, ok := c.Get(currentUserKey).(domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context, err error) error {
	msg := domain.ErrUnauthenticated.Error()
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		msg = domain.ErrTokenExpired.Error()
	case errors.Is(err, domain.ErrMalformedToken):
		msg = domain.ErrMalformedToken.Error()
	}
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
}
