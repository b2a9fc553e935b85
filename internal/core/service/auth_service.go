package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/api/metrics"
	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

// SessionStore is the subset of *session.Store the auth flow needs.
type SessionStore interface {
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Token() string
	Present() bool
}

// AuthService implements login, registration, logout and the identity
// checks that guard the dashboard.
type AuthService struct {
	api     ports.AuthAPI
	session SessionStore
	log     zerolog.Logger
}

func NewAuthService(api ports.AuthAPI, session SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, session: session, log: log}
}

// Login exchanges credentials for a token, stores it, and confirms the
// identity behind it. A who-am-I failure at this point is unexpected and is
// reported as domain.ErrIdentityUnconfirmed; the stored token is kept and
// will be re-checked on dashboard entry.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*domain.User, error) {
	token, err := s.api.Login(ctx, creds)
	if err != nil {
		s.log.Info().Str("username", creds.Username).Err(err).Msg("login rejected")
		return nil, err
	}

	if err := s.session.Set(ctx, token); err != nil {
		return nil, err
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("username", creds.Username).Msg("identity check after login failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityUnconfirmed, err)
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("logged in")
	return user, nil
}

// Register validates the form, creates the account for role, then logs in
// with the same credentials. Validation failures make no network call.
func (s *AuthService) Register(ctx context.Context, form RegistrationForm, role domain.Role) (*domain.User, error) {
	if role != domain.RoleCustomer && role != domain.RoleFarmer {
		return nil, fmt.Errorf("register: %w", domain.ErrForbidden)
	}
	if err := ValidateRegistration(form, role); err != nil {
		return nil, err
	}

	in := toRegistrationInput(form, role)
	var err error
	if role == domain.RoleFarmer {
		err = s.api.RegisterFarmer(ctx, in)
	} else {
		err = s.api.RegisterCustomer(ctx, in)
	}
	if err != nil {
		s.log.Info().Str("username", in.Username).Str("role", string(role)).Err(err).Msg("registration rejected")
		return nil, err
	}
	s.log.Info().Str("username", in.Username).Str("role", string(role)).Msg("account created")

	return s.Login(ctx, ports.Credentials{Username: in.Username, Password: in.Password})
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("logged out")
	return nil
}

// WhoAmI resolves the stored token into a user without touching the session.
func (s *AuthService) WhoAmI(ctx context.Context) (*domain.User, error) {
	if !s.session.Present() {
		return nil, domain.ErrNoSession
	}
	return s.api.Me(ctx)
}

// EnterDashboard is the authoritative session check. Any who-am-I failure
// clears the session and returns domain.ErrSessionInvalid, after which the
// caller must send the user back to login.
func (s *AuthService) EnterDashboard(ctx context.Context) (*domain.User, error) {
	if !s.session.Present() {
		return nil, domain.ErrNoSession
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if clearErr := s.session.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear invalid session")
		}
		metrics.SessionsInvalidatedTotal.Inc()
		s.log.Info().Err(err).Msg("session rejected by backend, cleared")
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)
	}
	return user, nil
}
