package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atongani/market-client/internal/core/ports"
)

func TestTokenStore_SaveLoadDelete(t *testing.T) {
	client := newStubCmdable()
	store := NewTokenStore(client, "accessToken", time.Hour)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if client.values["session:accessToken"] != "tok-1" {
		t.Fatalf("expected token under session:accessToken, got %v", client.values)
	}
	if client.ttls["session:accessToken"] != time.Hour {
		t.Fatalf("expected ttl to be passed through, got %v", client.ttls["session:accessToken"])
	}

	got, err := store.Load(ctx)
	if err != nil || got != "tok-1" {
		t.Fatalf("expected tok-1, got %q, %v", got, err)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ports.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after delete, got %v", err)
	}
}

func TestTokenStore_MissingKeyIsNotFound(t *testing.T) {
	store := NewTokenStore(newStubCmdable(), "accessToken", 0)

	if _, err := store.Load(context.Background()); !errors.Is(err, ports.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenStore_ZeroTTLKeepsToken(t *testing.T) {
	client := newStubCmdable()
	store := NewTokenStore(client, "k", 0)

	if err := store.Save(context.Background(), "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl, ok := client.ttls["session:k"]; !ok || ttl != 0 {
		t.Fatalf("expected zero ttl, got %v (set=%v)", ttl, ok)
	}
}

func TestTokenStore_BackendFailureIsWrapped(t *testing.T) {
	down := errors.New("connection refused")
	client := newStubCmdable()
	client.err = down
	store := NewTokenStore(client, "accessToken", 0)

	_, err := store.Load(context.Background())
	if !errors.Is(err, down) || errors.Is(err, ports.ErrTokenNotFound) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if err := store.Save(context.Background(), "tok"); !errors.Is(err, down) {
		t.Fatalf("expected wrapped backend error on save, got %v", err)
	}
}
