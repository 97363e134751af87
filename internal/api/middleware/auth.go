package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
)

const principalContextKey = "auth.principal"

const bearerPrefix = "Bearer "

// Authentication resolves a bearer token into a request-scoped principal.
// It never terminates the request: a missing header, a non-bearer scheme or a
// failed verification all leave the request anonymous and let downstream
// authorization decide. A principal already present in the context is kept
// without re-verification.
func Authentication(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Principal(c) != nil {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}

			decoded, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return next(c)
			}

			user, err := users.FindByEmail(c.Request().Context(), decoded.Subject)
			if err != nil {
				return next(c)
			}

			SetPrincipal(c, user)
			return next(c)
		}
	}
}

// Principal returns the authenticated account for this request, or nil.
func Principal(c echo.Context) *domain.UserAccount {
	user, _ := c.Get(principalContextKey).(*domain.UserAccount)
	return user
}

// SetPrincipal publishes the authenticated account to the request context.
func SetPrincipal(c echo.Context, user *domain.UserAccount) {
	c.Set(principalContextKey, user)
}
