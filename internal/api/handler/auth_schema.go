package handler

import (
	"time"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/service"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// registerRequest is checked by the auth service, not by the echo
// validator, so the field messages match the registration form.
type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	FarmName        string `json:"farm_name,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	RoleLabel string    `json:"role_label"`
	JoinedAt  time.Time `json:"joined_at,omitempty"`
}

type authResponse struct {
	User     userResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

type loginInfoResponse struct {
	Message  string   `json:"message"`
	Register []string `json:"register"`
}

type dashboardResponse struct {
	User userResponse `json:"user"`
	Tabs []string     `json:"tabs"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type fieldErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func toRegistrationForm(req registerRequest) service.RegistrationForm {
	return service.RegistrationForm{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		FarmName:        req.FarmName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		RoleLabel: u.Role.Label(),
		JoinedAt:  u.JoinedAt,
	}
}
