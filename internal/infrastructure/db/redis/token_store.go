package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atongani/market-client/internal/core/ports"
)

// TokenStore keeps the session token under a single Redis key so that
// several terminals on one host share a login.
// Key format: session:<key>
type TokenStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore. A zero ttl keeps the token until it
// is deleted.
func NewTokenStore(client redis.Cmdable, key string, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, key: "session:" + key, ttl: ttl}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrTokenNotFound
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
