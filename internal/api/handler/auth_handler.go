package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
	"github.com/atongani/market-client/internal/core/service"
)

const (
	loginFailed        = "Login failed. Check username/password."
	registrationFailed = "Registration failed. Try a different username/email."
	dashboardPath      = "/dashboard"
	loginPath          = "/login"
)

// AuthService is the subset of *service.AuthService the console uses.
type AuthService interface {
	Login(ctx context.Context, creds ports.Credentials) (*domain.User, error)
	Register(ctx context.Context, form service.RegistrationForm, role domain.Role) (*domain.User, error)
	Logout(ctx context.Context) error
}

// SessionChecker reports whether a session token is held.
type SessionChecker interface {
	Present() bool
}

type AuthHandler struct {
	authService AuthService
	sessions    SessionChecker
}

func NewAuthHandler(authService AuthService, sessions SessionChecker) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// LoginPage describes the login step, or skips it when a session exists.
//
// @Summary      Login entry point
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginInfoResponse
// @Success      302  "redirect to /dashboard when a session exists"
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if h.sessions.Present() {
		return c.Redirect(http.StatusFound, dashboardPath)
	}
	return c.JSON(http.StatusOK, loginInfoResponse{
		Message:  "Please log in",
		Register: []string{"/register/customer", "/register/farmer"},
	})
}

// Login exchanges credentials for a session and resolves the user.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.authService.Login(c.Request().Context(), ports.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return c.JSON(authFailureStatus(err), map[string]string{"error": domain.Summary(err, loginFailed)})
	}

	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Redirect: dashboardPath})
}

// RegisterCustomer creates a customer account and logs in.
//
// @Summary      Register a customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  fieldErrorResponse
// @Failure      502   {object}  fieldErrorResponse
// @Router       /register/customer [post]
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	return h.register(c, domain.RoleCustomer)
}

// RegisterFarmer creates a farmer account and logs in.
//
// @Summary      Register a farmer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form; farm_name is required"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  fieldErrorResponse
// @Failure      502   {object}  fieldErrorResponse
// @Router       /register/farmer [post]
func (h *AuthHandler) RegisterFarmer(c echo.Context) error {
	return h.register(c, domain.RoleFarmer)
}

func (h *AuthHandler) register(c echo.Context, role domain.Role) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fieldErrorResponse{Error: "invalid payload"})
	}

	user, err := h.authService.Register(c.Request().Context(), toRegistrationForm(req), role)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, fieldErrorResponse{Error: ve.Message, Field: ve.Field})
		}
		return c.JSON(authFailureStatus(err), fieldErrorResponse{Error: domain.FieldSummary(err, registrationFailed)})
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user), Redirect: dashboardPath})
}

// Logout ends the session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out", Redirect: loginPath})
}

// authFailureStatus keeps backend 4xx codes and reports everything else as
// a gateway failure.
func authFailureStatus(err error) int {
	var he *domain.HTTPError
	if errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500 {
		return he.StatusCode
	}
	if errors.Is(err, domain.ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}
