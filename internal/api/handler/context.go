package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atongani/market-client/internal/core/domain"
)

// ctxUser returns the user injected by the Identity middleware. Its absence
// means the route was mounted without the middleware chain.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return user, nil
}
