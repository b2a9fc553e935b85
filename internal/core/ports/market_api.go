package ports

import (
	"context"

	"github.com/atongani/market-client/internal/core/domain"
)

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// RegistrationInput is the payload sent to a registration endpoint.
// FarmName is only sent for farmer registrations.
type RegistrationInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	FarmName  string
}

// AuthAPI covers the authentication endpoints of the backend.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Me(ctx context.Context) (*domain.User, error)
	RegisterCustomer(ctx context.Context, in RegistrationInput) error
	RegisterFarmer(ctx context.Context, in RegistrationInput) error
}

// OrdersAPI covers the order endpoints of the backend.
type OrdersAPI interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	OrderDetail(ctx context.Context, id int64) (*domain.Order, error)
	Checkout(ctx context.Context) (*domain.Order, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
}

// MarketAPI is the full backend surface used by the client.
type MarketAPI interface {
	AuthAPI
	OrdersAPI
}
