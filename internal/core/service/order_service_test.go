package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
)

func TestOrderService_DetailNotFound(t *testing.T) {
	svc := NewOrderService(&stubAPI{}, zerolog.Nop())

	_, err := svc.Detail(context.Background(), 42)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_CheckoutReturnsOrder(t *testing.T) {
	svc := NewOrderService(&stubAPI{}, zerolog.Nop())

	order, err := svc.Checkout(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if order.Status != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", order.Status)
	}
}

func TestOrderService_Approve(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{ID: 2, Status: domain.StatusInProgress}}}
	svc := NewOrderService(api, zerolog.Nop())

	if err := svc.Approve(context.Background(), 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := svc.Detail(context.Background(), 2)
	if got.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", got.Status)
	}
}
