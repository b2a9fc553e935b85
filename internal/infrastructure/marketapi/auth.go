package marketapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

const (
	pathMe               = "/api/auth/me/"
	pathRegisterCustomer = "/api/auth/register/customer/"
	pathRegisterFarmer   = "/api/auth/register/farmer/"
)

var errNoAccessToken = errors.New("login response carried no access token")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FarmName  string `json:"farm_name,omitempty"`
}

// Login exchanges credentials for an access token. The token is returned,
// not stored: persisting it is the caller's decision.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (string, error) {
	var out loginResponse
	err := c.Do(ctx, http.MethodPost, c.loginPath, c.loginPath,
		loginRequest{Username: creds.Username, Password: creds.Password}, &out)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errNoAccessToken
	}
	return out.Access, nil
}

// Me resolves the current token into a user record.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out userDTO
	if err := c.Do(ctx, http.MethodGet, pathMe, pathMe, nil, &out); err != nil {
		return nil, err
	}
	u := out.toDomain()
	return &u, nil
}

func (c *Client) RegisterCustomer(ctx context.Context, in ports.RegistrationInput) error {
	req := toRegisterRequest(in)
	req.FarmName = ""
	return c.Do(ctx, http.MethodPost, pathRegisterCustomer, pathRegisterCustomer, req, nil)
}

func (c *Client) RegisterFarmer(ctx context.Context, in ports.RegistrationInput) error {
	return c.Do(ctx, http.MethodPost, pathRegisterFarmer, pathRegisterFarmer, toRegisterRequest(in), nil)
}

func toRegisterRequest(in ports.RegistrationInput) registerRequest {
	return registerRequest{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		FarmName:  in.FarmName,
	}
}
