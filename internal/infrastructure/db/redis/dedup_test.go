package redis

import (
	"context"
	"errors"
	"testing"
)

func TestDedupChecker_FirstClaimWins(t *testing.T) {
	client := newStubCmdable()
	ctx := context.Background()
	// Two terminals sharing one Redis instance.
	a, b := NewDedupChecker(client), NewDedupChecker(client)

	first, err := a.Claim(ctx, 42, "APPROVED")
	if err != nil || !first {
		t.Fatalf("expected first claim to win, got %v, %v", first, err)
	}
	second, err := b.Claim(ctx, 42, "APPROVED")
	if err != nil || second {
		t.Fatalf("expected second claim to be a duplicate, got %v, %v", second, err)
	}

	if _, ok := client.values["notify:42:APPROVED"]; !ok {
		t.Fatalf("expected key notify:42:APPROVED, got %v", client.values)
	}
	if client.ttls["notify:42:APPROVED"] != dedupTTL {
		t.Fatalf("expected dedup ttl, got %v", client.ttls["notify:42:APPROVED"])
	}
}

func TestDedupChecker_StatusesAreIndependent(t *testing.T) {
	d := NewDedupChecker(newStubCmdable())
	ctx := context.Background()

	if ok, _ := d.Claim(ctx, 1, "APPROVED"); !ok {
		t.Fatalf("expected APPROVED claim")
	}
	if ok, _ := d.Claim(ctx, 1, "COMPLETED"); !ok {
		t.Fatalf("expected COMPLETED claim for the same order")
	}
}

func TestDedupChecker_FailureIsReported(t *testing.T) {
	client := newStubCmdable()
	client.err = errors.New("timeout")

	ok, err := NewDedupChecker(client).Claim(context.Background(), 1, "APPROVED")
	if err == nil || ok {
		t.Fatalf("expected error and no claim, got %v, %v", ok, err)
	}
}
