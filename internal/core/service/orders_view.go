package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/poller"
)

const ordersErrorMessage = "Failed to load orders"

// TransitionSink accepts observed status changes, e.g. *queue.Dispatcher.
type TransitionSink interface {
	// EnqueueBatch accepts the transitions of one poll in order and returns
	// how many were taken. It must not block.
	EnqueueBatch(ts []domain.OrderTransition) int
}

// OrdersViewOptions configures an OrdersView.
type OrdersViewOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	// Sink is optional. When set, every status change between two polls is
	// handed to it.
	Sink TransitionSink
	// NewTicker and Now are passed to the poller, for tests.
	NewTicker func(time.Duration) poller.Ticker
	Now       func() time.Time
}

// OrdersViewState is what a renderer needs to draw the customer's orders.
type OrdersViewState struct {
	Loading      bool
	Orders       []domain.Order
	ErrorMessage string
	Expanded     int64
	HasExpanded  bool
	UpdatedAt    time.Time
}

// OrdersView is the live "my orders" list: a poller over the customer's
// orders plus a local expanded-order selection.
type OrdersView struct {
	poller *poller.Poller[domain.Order]

	mu          sync.Mutex
	expanded    int64
	hasExpanded bool
}

// OrdersLister fetches the customer's orders.
type OrdersLister interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
}

func NewOrdersView(api OrdersLister, opts OrdersViewOptions, log zerolog.Logger) *OrdersView {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	p := poller.New(api.MyOrders, poller.Options{
		Resource:     "my_orders",
		Interval:     opts.Interval,
		Timeout:      opts.Timeout,
		ErrorMessage: ordersErrorMessage,
		NewTicker:    opts.NewTicker,
		Now:          now,
	}, log)

	if sink := opts.Sink; sink != nil {
		p.OnApply(func(prev, next []domain.Order) {
			if ts := domain.DiffStatuses(prev, next, now()); len(ts) > 0 {
				sink.EnqueueBatch(ts)
			}
		})
	}
	return &OrdersView{poller: p}
}

// Start loads the orders immediately and keeps them fresh until Stop or
// ctx cancellation.
func (v *OrdersView) Start(ctx context.Context) error {
	return v.poller.Start(ctx)
}

// Stop tears the view down. No fetch starts afterwards.
func (v *OrdersView) Stop() {
	v.poller.Stop()
}

// Refresh polls now, e.g. right after checkout.
func (v *OrdersView) Refresh() {
	v.poller.Refresh()
}

// Updates fires after each applied poll.
func (v *OrdersView) Updates() <-chan struct{} {
	return v.poller.Updates()
}

// Toggle expands order id, or collapses it when it is already expanded.
// Expanding one order collapses any other.
func (v *OrdersView) Toggle(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hasExpanded && v.expanded == id {
		v.hasExpanded = false
		v.expanded = 0
		return
	}
	v.expanded = id
	v.hasExpanded = true
}

// Expanded returns the expanded order id, if any.
func (v *OrdersView) Expanded() (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded, v.hasExpanded
}

// State returns a copy of the current view state.
func (v *OrdersView) State() OrdersViewState {
	snap := v.poller.Snapshot()
	id, ok := v.Expanded()
	return OrdersViewState{
		Loading:      snap.Loading,
		Orders:       snap.Items,
		ErrorMessage: snap.ErrorMessage,
		Expanded:     id,
		HasExpanded:  ok,
		UpdatedAt:    snap.UpdatedAt,
	}
}
