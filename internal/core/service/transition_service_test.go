package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
)

func approved(orderID int64) domain.OrderTransition {
	return domain.OrderTransition{
		OrderID:    orderID,
		From:       domain.StatusInProgress,
		To:         domain.StatusApproved,
		ObservedAt: time.Now(),
	}
}

func TestProcess_AnnouncesAndRecords(t *testing.T) {
	dedup := &stubDedup{}
	repo := &stubTransitionRepo{}
	notifier := &recordingNotifier{}
	svc := NewTransitionService(repo, dedup, notifier, zerolog.Nop())

	if err := svc.Process(context.Background(), approved(7)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notifier.transitions()) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.transitions()))
	}
	if len(repo.inserted) != 1 || repo.inserted[0].OrderID != 7 {
		t.Fatalf("expected transition to be recorded, got %+v", repo.inserted)
	}
	if len(dedup.claimed) != 1 || dedup.claimed[0] != string(domain.StatusApproved) {
		t.Fatalf("expected dedup key to be claimed, got %v", dedup.claimed)
	}
}

func TestProcess_DuplicateIsSkipped(t *testing.T) {
	notifier := &recordingNotifier{}
	repo := &stubTransitionRepo{}
	svc := NewTransitionService(repo, &stubDedup{isDup: true}, notifier, zerolog.Nop())

	if err := svc.Process(context.Background(), approved(7)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notifier.transitions()) != 0 || len(repo.inserted) != 0 {
		t.Fatalf("duplicate must not be announced or recorded")
	}
}

func TestProcess_DedupFailureStillAnnounces(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewTransitionService(nil, &stubDedup{claimErr: errors.New("redis down")}, notifier, zerolog.Nop())

	if err := svc.Process(context.Background(), approved(8)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notifier.transitions()) != 1 {
		t.Fatalf("expected notification despite dedup failure")
	}
}

func TestProcess_RepositoryFailureIsNotFatal(t *testing.T) {
	notifier := &recordingNotifier{}
	repo := &stubTransitionRepo{err: errors.New("mongo down")}
	svc := NewTransitionService(repo, NewMemoryDedup(), notifier, zerolog.Nop())

	if err := svc.Process(context.Background(), approved(9)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notifier.transitions()) != 1 {
		t.Fatalf("expected notification despite repository failure")
	}
}

func TestProcess_MemoryDedupSuppressesRepeat(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewTransitionService(nil, NewMemoryDedup(), notifier, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := svc.Process(context.Background(), approved(10)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if len(notifier.transitions()) != 1 {
		t.Fatalf("expected a single announcement, got %d", len(notifier.transitions()))
	}
}

func TestProcess_RejectsIncompleteTransition(t *testing.T) {
	svc := NewTransitionService(nil, NewMemoryDedup(), nil, zerolog.Nop())

	if err := svc.Process(context.Background(), domain.OrderTransition{OrderID: 1}); err == nil {
		t.Fatalf("expected error for a transition without a target status")
	}
}

func TestMemoryDedup_ClaimIsFirstCallerOnly(t *testing.T) {
	dedup := NewMemoryDedup()
	ctx := context.Background()

	first, err := dedup.Claim(ctx, 3, string(domain.StatusApproved))
	if err != nil || !first {
		t.Fatalf("expected first claim to succeed, got %v, %v", first, err)
	}
	again, _ := dedup.Claim(ctx, 3, string(domain.StatusApproved))
	if again {
		t.Fatalf("expected repeated claim to be refused")
	}
	other, _ := dedup.Claim(ctx, 3, string(domain.StatusCompleted))
	if !other {
		t.Fatalf("expected a different status to be claimable")
	}
}
