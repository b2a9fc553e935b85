package queue

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/api/metrics"
	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes order transitions to a fixed set of workers by order id,
// guaranteeing per-order ordering of notifications.
type Dispatcher struct {
	workers []chan domain.OrderTransition
	service ports.TransitionService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.TransitionService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.OrderTransition, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderTransition, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a transition to the worker responsible for its order. It
// never blocks: when that worker's buffer is full the transition is dropped
// and reported false.
func (d *Dispatcher) Enqueue(t domain.OrderTransition) bool {
	idx := d.shardIndex(t.OrderID)
	select {
	case d.workers[idx] <- t:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.log.Warn().Int64("order_id", t.OrderID).Int("worker_id", idx).Msg("notification queue full, transition dropped")
		return false
	}
}

// EnqueueBatch enqueues the transitions of one poll, preserving per-order
// ordering, and returns how many were accepted.
func (d *Dispatcher) EnqueueBatch(ts []domain.OrderTransition) int {
	accepted := 0
	for _, t := range ts {
		if d.Enqueue(t) {
			accepted++
		}
	}
	return accepted
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID int64) int {
	if orderID < 0 {
		orderID = -orderID
	}
	return int(orderID % int64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderTransition) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Process(ctx, t); err != nil {
				d.log.Error().Err(err).
					Int64("order_id", t.OrderID).
					Int("worker_id", id).
					Msg("transition processing failed")
			}
		}
	}
}
