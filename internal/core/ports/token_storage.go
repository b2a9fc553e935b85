package ports

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned by TokenStorage.Load when nothing is stored.
var ErrTokenNotFound = errors.New("token not found")

// TokenStorage persists the session token so it survives restarts.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
