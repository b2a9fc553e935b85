// Package poller keeps a local copy of a remote list resource fresh by
// re-fetching it on a fixed interval.
//
// Every fetch replaces the whole list; nothing is merged. Fetches may
// overlap when the backend is slower than the interval, so each one is
// tagged with a sequence number and a result is applied only when it is
// newer than the last applied one.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/api/metrics"
)

const (
	DefaultInterval     = 5 * time.Second
	defaultTimeout      = 10 * time.Second
	defaultErrorMessage = "Failed to load"
)

var (
	ErrAlreadyStarted = errors.New("poller already started")
	ErrStopped        = errors.New("poller stopped")
)

// FetchFunc retrieves the current list.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Ticker delivers poll ticks. It matches the subset of *time.Ticker the
// poller needs so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Options controls poller behaviour.
type Options struct {
	// Resource labels metrics and logs (e.g. "my_orders").
	Resource string
	Interval time.Duration
	// Timeout bounds a single fetch.
	Timeout time.Duration
	// ErrorMessage is the user-facing text set when a poll fails.
	ErrorMessage string
	// NewTicker overrides the ticker, for tests.
	NewTicker func(time.Duration) Ticker
	// Now overrides the clock used for UpdatedAt, for tests.
	Now func() time.Time
}

// Snapshot is the view state exposed by a Poller.
type Snapshot[T any] struct {
	// Loading is true until the first fetch completes, successfully or not.
	Loading bool
	Items   []T
	// ErrorMessage is set by a failed poll and cleared by the next success.
	ErrorMessage string
	Err          error
	// Seq is the sequence number of the last applied result.
	Seq       uint64
	UpdatedAt time.Time
}

// Poller periodically re-fetches a list. The zero value is not usable;
// create one with New.
type Poller[T any] struct {
	fetch FetchFunc[T]
	opts  Options
	log   zerolog.Logger

	mu        sync.Mutex
	state     Snapshot[T]
	nextSeq   uint64
	started   bool
	stopped   bool
	onApply   func(prev, next []T)
	quit      chan struct{}
	done      chan struct{}
	refresh   chan struct{}
	updates   chan struct{}
	inflight  sync.WaitGroup
	parentCtx context.Context
}

// New creates a Poller. Missing options fall back to defaults.
func New[T any](fetch FetchFunc[T], opts Options, log zerolog.Logger) *Poller[T] {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = defaultErrorMessage
	}
	if opts.NewTicker == nil {
		opts.NewTicker = func(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller[T]{
		fetch:   fetch,
		opts:    opts,
		log:     log.With().Str("resource", opts.Resource).Logger(),
		state:   Snapshot[T]{Loading: true},
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		refresh: make(chan struct{}, 1),
		updates: make(chan struct{}, 1),
	}
}

// OnApply registers fn to be called with the previous and the new list every
// time a successful result is applied. It runs under the poller's lock, in
// apply order, and must not block or call back into the poller. Register it
// before Start.
func (p *Poller[T]) OnApply(fn func(prev, next []T)) {
	p.mu.Lock()
	p.onApply = fn
	p.mu.Unlock()
}

// Start fetches immediately and then once per interval until Stop is called
// or ctx is cancelled.
func (p *Poller[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrStopped
	}
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.parentCtx = ctx
	p.mu.Unlock()

	ticker := p.opts.NewTicker(p.opts.Interval)
	p.launch()
	go p.run(ctx, ticker)

	p.log.Debug().Dur("interval", p.opts.Interval).Msg("poller started")
	return nil
}

// Stop cancels the interval. No fetch starts after Stop returns. Fetches
// already in flight are left to finish, but their results are discarded.
// Stop is idempotent.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	close(p.quit)
	if started {
		<-p.done
	}
	p.log.Debug().Msg("poller stopped")
}

// Wait blocks until every fetch that has been started has completed.
func (p *Poller[T]) Wait() {
	p.inflight.Wait()
}

// Refresh requests an immediate fetch outside the regular cadence. It is a
// no-op when the poller is not running or a refresh is already pending.
func (p *Poller[T]) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (p *Poller[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Items = append([]T(nil), p.state.Items...)
	return s
}

// Updates signals after every applied result. The channel is buffered by
// one, so a slow reader sees at least the latest change.
func (p *Poller[T]) Updates() <-chan struct{} {
	return p.updates
}

func (p *Poller[T]) run(ctx context.Context, ticker Ticker) {
	defer close(p.done)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.launch()
		case <-p.refresh:
			p.launch()
		}
	}
}

// launch starts one fetch in its own goroutine unless the poller is stopped.
func (p *Poller[T]) launch() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.nextSeq++
	seq := p.nextSeq
	ctx := p.parentCtx
	p.inflight.Add(1)
	p.mu.Unlock()

	metrics.PollsInFlight.WithLabelValues(p.opts.Resource).Inc()
	go p.poll(ctx, seq)
}

func (p *Poller[T]) poll(ctx context.Context, seq uint64) {
	defer p.inflight.Done()
	defer metrics.PollsInFlight.WithLabelValues(p.opts.Resource).Dec()

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	start := time.Now()
	items, err := p.fetch(fetchCtx)
	cancel()
	metrics.PollDuration.WithLabelValues(p.opts.Resource).Observe(time.Since(start).Seconds())

	p.apply(seq, items, err)
}

func (p *Poller[T]) apply(seq uint64, items []T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.stopped:
		metrics.PollsTotal.WithLabelValues(p.opts.Resource, "discarded").Inc()
		return
	case seq <= p.state.Seq:
		metrics.PollsTotal.WithLabelValues(p.opts.Resource, "stale").Inc()
		p.log.Debug().Uint64("seq", seq).Uint64("applied", p.state.Seq).Msg("stale poll result discarded")
		return
	}

	p.state.Seq = seq
	p.state.Loading = false
	p.state.UpdatedAt = p.opts.Now()

	if err != nil {
		metrics.PollsTotal.WithLabelValues(p.opts.Resource, "error").Inc()
		p.state.ErrorMessage = p.opts.ErrorMessage
		p.state.Err = err
		p.log.Warn().Err(err).Uint64("seq", seq).Msg("poll failed")
	} else {
		metrics.PollsTotal.WithLabelValues(p.opts.Resource, "applied").Inc()
		prev := p.state.Items
		if items == nil {
			items = []T{}
		}
		p.state.Items = items
		p.state.ErrorMessage = ""
		p.state.Err = nil
		if p.onApply != nil {
			p.onApply(prev, items)
		}
	}

	select {
	case p.updates <- struct{}{}:
	default:
	}
}
