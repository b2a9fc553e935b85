package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/session"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// SessionChecker reports whether a token is held. It never validates it.
type SessionChecker interface {
	Present() bool
	Token() string
}

// IdentityResolver confirms the stored token with the backend. It clears
// the session itself when the token is rejected.
type IdentityResolver interface {
	EnterDashboard(ctx context.Context) (*domain.User, error)
}

// Guard lets a request through only when a session token is present. It
// checks presence, not validity: Identity asks the backend.
func Guard(sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessions.Present() {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

// Identity resolves the current user through the backend and injects it
// into the context under "user", with its role under "role". Any failure
// sends the request back to login.
func Identity(resolver IdentityResolver, sessions SessionChecker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolver.EnterDashboard(c.Request().Context())
			if err != nil {
				if !errors.Is(err, domain.ErrNoSession) {
					log.Info().Err(err).Str("path", c.Path()).Msg("identity check failed, redirecting to login")
				}
				return c.Redirect(http.StatusFound, LoginPath)
			}

			if info, ierr := session.Inspect(sessions.Token()); ierr == nil && !info.ExpiresAt.IsZero() {
				log.Debug().
					Str("username", user.Username).
					Time("token_expires_at", info.ExpiresAt).
					Msg("identity confirmed")
			}

			c.Set("user", user)
			c.Set("role", string(user.Role))
			return next(c)
		}
	}
}
