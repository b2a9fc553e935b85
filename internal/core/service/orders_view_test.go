package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/poller"
)

func newTestView(api *stubAPI, ticker *manualTicker, sink TransitionSink) *OrdersView {
	return NewOrdersView(api, OrdersViewOptions{
		Interval:  time.Hour,
		Sink:      sink,
		NewTicker: func(time.Duration) poller.Ticker { return ticker },
	}, zerolog.Nop())
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestOrdersView_PicksUpApprovalWithoutUserAction(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{ID: 1, Status: domain.StatusInProgress}}}
	ticker := newManualTicker()
	sink := &recordingNotifier{}
	view := newTestView(api, ticker, sink)

	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()

	waitFor(t, func() bool { return !view.State().Loading })
	if got := view.State().Orders[0].Status; got != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", got)
	}

	// The farmer approves on the backend; the customer does nothing.
	api.setStatus(1, domain.StatusApproved, "")
	if !ticker.tick() {
		t.Fatalf("tick not delivered")
	}

	waitFor(t, func() bool {
		s := view.State()
		return len(s.Orders) == 1 && s.Orders[0].Status == domain.StatusApproved
	})
	waitFor(t, func() bool { return len(sink.transitions()) == 1 })
	tr := sink.transitions()[0]
	if tr.From != domain.StatusInProgress || tr.To != domain.StatusApproved {
		t.Fatalf("unexpected transition %+v", tr)
	}
}

func TestOrdersView_RejectionReasonShowsOnNextPoll(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{ID: 5, Status: domain.StatusInProgress}}}
	ticker := newManualTicker()
	view := newTestView(api, ticker, nil)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	waitFor(t, func() bool { return !view.State().Loading })

	farmer := NewOrderService(api, zerolog.Nop())
	if err := farmer.Reject(context.Background(), 5, "  out of stock "); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if api.rejected[5] != "out of stock" {
		t.Fatalf("expected trimmed reason to be sent, got %q", api.rejected[5])
	}

	ticker.tick()
	waitFor(t, func() bool {
		s := view.State()
		return len(s.Orders) == 1 && s.Orders[0].Rejection() == "out of stock"
	})
}

func TestOrdersView_ErrorKeepsPreviousOrders(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{ID: 1, Status: domain.StatusPending}}}
	ticker := newManualTicker()
	view := newTestView(api, ticker, nil)
	_ = view.Start(context.Background())
	defer view.Stop()
	waitFor(t, func() bool { return !view.State().Loading })

	api.mu.Lock()
	api.ordersErr = errBackendDown
	api.mu.Unlock()
	ticker.tick()

	waitFor(t, func() bool { return view.State().ErrorMessage != "" })
	s := view.State()
	if s.ErrorMessage != "Failed to load orders" {
		t.Fatalf("unexpected error message %q", s.ErrorMessage)
	}
	if len(s.Orders) != 1 {
		t.Fatalf("expected previous orders to be kept, got %d", len(s.Orders))
	}
}

func TestOrdersView_IdenticalPollsAnnounceNothing(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{ID: 1, Status: domain.StatusInProgress}}}
	ticker := newManualTicker()
	sink := &recordingNotifier{}
	view := newTestView(api, ticker, sink)
	_ = view.Start(context.Background())
	defer view.Stop()
	waitFor(t, func() bool { return !view.State().Loading })

	for i := 0; i < 3; i++ {
		ticker.tick()
	}
	view.Stop()
	if n := len(sink.transitions()); n != 0 {
		t.Fatalf("expected no transitions, got %d", n)
	}
	if got := view.State().Orders; len(got) != 1 || got[0].Status != domain.StatusInProgress {
		t.Fatalf("unexpected orders %+v", got)
	}
}

func TestOrdersView_ToggleExpandsOneOrder(t *testing.T) {
	view := newTestView(&stubAPI{}, newManualTicker(), nil)

	if _, ok := view.Expanded(); ok {
		t.Fatalf("nothing should be expanded initially")
	}
	view.Toggle(3)
	if id, ok := view.Expanded(); !ok || id != 3 {
		t.Fatalf("expected 3 expanded, got %d/%v", id, ok)
	}
	view.Toggle(4)
	if id, _ := view.Expanded(); id != 4 {
		t.Fatalf("expected 4 expanded, got %d", id)
	}
	view.Toggle(4)
	if _, ok := view.Expanded(); ok {
		t.Fatalf("expected collapse on second toggle")
	}
}

func TestOrdersView_NoFetchAfterStop(t *testing.T) {
	api := &stubAPI{}
	ticker := newManualTicker()
	view := newTestView(api, ticker, nil)
	_ = view.Start(context.Background())
	waitFor(t, func() bool { return !view.State().Loading })

	view.Stop()
	before := len(api.callLog())
	if ticker.tick() {
		t.Fatalf("ticker must not be read after Stop")
	}
	if after := len(api.callLog()); after != before {
		t.Fatalf("expected no fetch after Stop, got %d new calls", after-before)
	}
}

type batchSink struct {
	mu      sync.Mutex
	batches [][]domain.OrderTransition
}

func (b *batchSink) EnqueueBatch(ts []domain.OrderTransition) int {
	b.mu.Lock()
	b.batches = append(b.batches, ts)
	b.mu.Unlock()
	return len(ts)
}

func (b *batchSink) snapshot() [][]domain.OrderTransition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]domain.OrderTransition(nil), b.batches...)
}

func TestOrdersView_OnePollHandsOneBatch(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{
		{ID: 1, Status: domain.StatusInProgress},
		{ID: 2, Status: domain.StatusInProgress},
	}}
	ticker := newManualTicker()
	sink := &batchSink{}
	view := newTestView(api, ticker, sink)

	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	waitFor(t, func() bool { return !view.State().Loading })

	api.setStatus(1, domain.StatusApproved, "")
	api.setStatus(2, domain.StatusRejected, "out of stock")
	if !ticker.tick() {
		t.Fatalf("tick not delivered")
	}

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	batch := sink.snapshot()[0]
	if len(batch) != 2 {
		t.Fatalf("expected both changes in one batch, got %+v", batch)
	}
}
