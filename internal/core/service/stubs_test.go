package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

// --- stub backend ---

type stubAPI struct {
	mu    sync.Mutex
	calls []string

	token    string
	loginErr error
	user     *domain.User
	meErr    error
	// meHook runs at the start of Me, before the result is returned.
	meHook      func()
	registerErr error
	registered  []ports.RegistrationInput
	loginCreds  []ports.Credentials

	orders    []domain.Order
	ordersErr error
	rejected  map[int64]string
}

func (s *stubAPI) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubAPI) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubAPI) Login(_ context.Context, creds ports.Credentials) (string, error) {
	s.record("login")
	s.mu.Lock()
	s.loginCreds = append(s.loginCreds, creds)
	s.mu.Unlock()
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.token, nil
}

func (s *stubAPI) Me(_ context.Context) (*domain.User, error) {
	s.record("me")
	if s.meHook != nil {
		s.meHook()
	}
	if s.meErr != nil {
		return nil, s.meErr
	}
	return s.user, nil
}

func (s *stubAPI) RegisterCustomer(_ context.Context, in ports.RegistrationInput) error {
	s.record("register_customer")
	s.mu.Lock()
	s.registered = append(s.registered, in)
	s.mu.Unlock()
	return s.registerErr
}

func (s *stubAPI) RegisterFarmer(_ context.Context, in ports.RegistrationInput) error {
	s.record("register_farmer")
	s.mu.Lock()
	s.registered = append(s.registered, in)
	s.mu.Unlock()
	return s.registerErr
}

func (s *stubAPI) MyOrders(_ context.Context) ([]domain.Order, error) {
	s.record("my_orders")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ordersErr != nil {
		return nil, s.ordersErr
	}
	return append([]domain.Order(nil), s.orders...), nil
}

func (s *stubAPI) PendingOrders(_ context.Context) ([]domain.Order, error) {
	s.record("pending_orders")
	return nil, nil
}

func (s *stubAPI) OrderDetail(_ context.Context, id int64) (*domain.Order, error) {
	s.record("order_detail")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *stubAPI) Checkout(_ context.Context) (*domain.Order, error) {
	s.record("checkout")
	return &domain.Order{ID: 99, Status: domain.StatusInProgress, TotalAmount: 12.5}, nil
}

func (s *stubAPI) Approve(_ context.Context, id int64) error {
	s.record("approve")
	s.setStatus(id, domain.StatusApproved, "")
	return nil
}

func (s *stubAPI) Reject(_ context.Context, id int64, reason string) error {
	s.record("reject")
	s.mu.Lock()
	if s.rejected == nil {
		s.rejected = make(map[int64]string)
	}
	s.rejected[id] = reason
	s.mu.Unlock()
	s.setStatus(id, domain.StatusRejected, reason)
	return nil
}

// setStatus plays the backend's part in a status change.
func (s *stubAPI) setStatus(id int64, status domain.OrderStatus, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].RejectionReason = reason
		}
	}
}

var _ ports.MarketAPI = (*stubAPI)(nil)

// --- stub dedup ---

type stubDedup struct {
	isDup    bool
	claimErr error
	claimed  []string
}

func (s *stubDedup) Claim(_ context.Context, _ int64, status string) (bool, error) {
	s.claimed = append(s.claimed, status)
	if s.claimErr != nil {
		return false, s.claimErr
	}
	return !s.isDup, nil
}

// --- stub transition repository ---

type stubTransitionRepo struct {
	inserted []domain.OrderTransition
	err      error
}

func (s *stubTransitionRepo) InsertTransition(_ context.Context, t domain.OrderTransition) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, t)
	return nil
}

// --- recording notifier / sink ---

type recordingNotifier struct {
	mu   sync.Mutex
	seen []domain.OrderTransition
}

func (r *recordingNotifier) Notify(t domain.OrderTransition) {
	r.mu.Lock()
	r.seen = append(r.seen, t)
	r.mu.Unlock()
}

func (r *recordingNotifier) EnqueueBatch(ts []domain.OrderTransition) int {
	for _, t := range ts {
		r.Notify(t)
	}
	return len(ts)
}

func (r *recordingNotifier) transitions() []domain.OrderTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderTransition(nil), r.seen...)
}

// --- manual ticker ---

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

func (m *manualTicker) tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

var errBackendDown = errors.New("backend down")
