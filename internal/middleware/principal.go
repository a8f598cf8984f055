package middleware

import (
	"context"
	"strings"

	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Principal is the authenticated caller.
type Principal struct {
	ID    string
	Name  string
	Email string
}

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

var errInvalidToken = apperrors.Unauthorized("Invalid or expired token")

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperrors.ErrUnauthenticated
			}
			p, err := a.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// OptionalAuth resolves the principal when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				if p, err := a.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(principalKey, p)
				}
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller resolved by one of the auth middlewares.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
