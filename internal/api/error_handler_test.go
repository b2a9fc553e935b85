package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
)

func TestErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", fmt.Errorf("detail: %w", domain.ErrOrderNotFound), http.StatusNotFound, "order not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"transport", domain.ErrTransport, http.StatusBadGateway, "backend unavailable"},
		{"validation", &domain.ValidationError{Field: "password", Message: "Passwords do not match."}, http.StatusBadRequest, "Passwords do not match."},
		{
			"backend client error",
			&domain.HTTPError{StatusCode: http.StatusBadRequest, Problem: domain.MessageProblem("Cart is empty")},
			http.StatusBadRequest,
			"Cart is empty",
		},
		{"backend server error", &domain.HTTPError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, "backend error"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid order id"), http.StatusBadRequest, "invalid order id"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, resp.Error)
			}
		})
	}
}
