// Package session holds the access token for the running client.
//
// A Store is created once at startup, loaded from durable storage, and
// passed explicitly to everything that needs the token. It never checks
// the token itself; the backend is the only authority on validity.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/ports"
)

// Store is the process-wide session. Reads are served from memory and every
// mutation is written through to the durable storage.
type Store struct {
	mu      sync.RWMutex
	token   string
	storage ports.TokenStorage
	log     zerolog.Logger
}

// NewStore creates an empty Store backed by storage. Call Load to restore a
// previously persisted token.
func NewStore(storage ports.TokenStorage, log zerolog.Logger) *Store {
	return &Store{storage: storage, log: log}
}

// Load restores the token from durable storage. A missing token is not an
// error.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("session load: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.log.Debug().Bool("present", token != "").Msg("session restored")
	return nil
}

// Set persists token and makes it the current session.
func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(ctx, token); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	s.token = token
	return nil
}

// Token returns the current token, or "" when there is no session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Present reports whether a token is held.
func (s *Store) Present() bool {
	return s.Token() != ""
}

// Clear drops the in-memory token and removes it from durable storage. The
// in-memory token is dropped even when the storage delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.storage.Delete(ctx); err != nil && !errors.Is(err, ports.ErrTokenNotFound) {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
