package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
)

type recordingService struct {
	mu   sync.Mutex
	seen []domain.OrderTransition
	done chan struct{}
	want int
}

func (r *recordingService) Process(_ context.Context, t domain.OrderTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, t)
	if len(r.seen) == r.want {
		close(r.done)
	}
	return nil
}

func TestDispatcher_PreservesPerOrderOrdering(t *testing.T) {
	svc := &recordingService{done: make(chan struct{}), want: 6}
	d := NewDispatcher(3, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.EnqueueBatch([]domain.OrderTransition{
		{OrderID: 1, From: domain.StatusPending, To: domain.StatusInProgress},
		{OrderID: 2, From: domain.StatusPending, To: domain.StatusInProgress},
		{OrderID: 1, From: domain.StatusInProgress, To: domain.StatusApproved},
		{OrderID: 2, From: domain.StatusInProgress, To: domain.StatusRejected},
		{OrderID: 1, From: domain.StatusApproved, To: domain.StatusCompleted},
		{OrderID: 4, From: domain.StatusPending, To: domain.StatusInProgress},
	})

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for transitions")
	}
	cancel()
	d.Wait()

	var order1 []domain.OrderStatus
	svc.mu.Lock()
	for _, tr := range svc.seen {
		if tr.OrderID == 1 {
			order1 = append(order1, tr.To)
		}
	}
	svc.mu.Unlock()

	want := []domain.OrderStatus{domain.StatusInProgress, domain.StatusApproved, domain.StatusCompleted}
	if len(order1) != len(want) {
		t.Fatalf("expected %d transitions for order 1, got %v", len(want), order1)
	}
	for i := range want {
		if order1[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], order1[i])
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingService{}, zerolog.Nop())
	if d.shardIndex(9) != d.shardIndex(9) {
		t.Fatalf("shard index must be deterministic")
	}
	if idx := d.shardIndex(-7); idx < 0 || idx >= 4 {
		t.Fatalf("shard index out of range: %d", idx)
	}
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, &recordingService{}, zerolog.Nop())
	// Workers are not started, so the buffer fills up.
	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(domain.OrderTransition{OrderID: 1, To: domain.StatusApproved}) {
			t.Fatalf("enqueue %d should fit in the buffer", i)
		}
	}
	if d.Enqueue(domain.OrderTransition{OrderID: 1, To: domain.StatusApproved}) {
		t.Fatalf("expected enqueue to report a drop when the buffer is full")
	}
}

func TestDispatcher_EnqueueBatchCountsAccepted(t *testing.T) {
	d := NewDispatcher(1, &recordingService{}, zerolog.Nop())
	batch := make([]domain.OrderTransition, channelBuffer+2)
	for i := range batch {
		batch[i] = domain.OrderTransition{OrderID: 1, To: domain.StatusApproved}
	}
	if got := d.EnqueueBatch(batch); got != channelBuffer {
		t.Fatalf("expected %d accepted, got %d", channelBuffer, got)
	}
}
