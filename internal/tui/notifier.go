package tui

import "github.com/atongani/market-client/internal/core/domain"

// Notifier forwards announced status changes to the running Model. It
// satisfies the transition service's Notifier interface.
type Notifier struct {
	ch chan domain.OrderTransition
}

// NewNotifier creates a Notifier holding up to buffer undelivered changes.
func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &Notifier{ch: make(chan domain.OrderTransition, buffer)}
}

// Notify never blocks; when the buffer is full the change is dropped, since
// the list itself already shows the new status.
func (n *Notifier) Notify(t domain.OrderTransition) {
	select {
	case n.ch <- t:
	default:
	}
}

// C delivers the changes.
func (n *Notifier) C() <-chan domain.OrderTransition {
	return n.ch
}
