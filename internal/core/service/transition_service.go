package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/api/metrics"
	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

// DedupChecker abstracts the "already announced" store (Redis or memory).
// Claim marks the change and reports true only for the first caller.
type DedupChecker interface {
	Claim(ctx context.Context, orderID int64, status string) (bool, error)
}

// Notifier receives every announced transition (e.g. the TUI status bar).
type Notifier interface {
	Notify(t domain.OrderTransition)
}

type transitionService struct {
	repo     ports.TransitionRepository
	dedup    DedupChecker
	notifier Notifier
	log      zerolog.Logger
}

// NewTransitionService returns a TransitionService. repo and notifier may be
// nil when no audit trail or listener is configured.
func NewTransitionService(
	repo ports.TransitionRepository,
	dedup DedupChecker,
	notifier Notifier,
	log zerolog.Logger,
) ports.TransitionService {
	return &transitionService{
		repo:     repo,
		dedup:    dedup,
		notifier: notifier,
		log:      log,
	}
}

// Process deduplicates, audits and announces a single status change.
func (s *transitionService) Process(ctx context.Context, t domain.OrderTransition) error {
	if t.OrderID == 0 || t.To == "" {
		return fmt.Errorf("process transition: incomplete transition %+v", t)
	}
	status := string(t.To)

	// 1. Skip changes that were already announced. A failing store does not
	// suppress the notification.
	claimed, err := s.dedup.Claim(ctx, t.OrderID, status)
	if err != nil {
		s.log.Warn().Err(err).Int64("order_id", t.OrderID).Msg("dedup claim failed, announcing anyway")
	} else if !claimed {
		metrics.NotificationDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Int64("order_id", t.OrderID).Str("status", status).Msg("duplicate transition skipped")
		return nil
	}
	metrics.NotificationDedupTotal.WithLabelValues("miss").Inc()

	// 2. Audit trail (non-fatal on failure).
	if s.repo != nil {
		if err := s.repo.InsertTransition(ctx, t); err != nil {
			s.log.Warn().Err(err).Int64("order_id", t.OrderID).Msg("failed to record transition")
		}
	}

	metrics.OrderTransitionsTotal.WithLabelValues(status).Inc()
	if s.notifier != nil {
		s.notifier.Notify(t)
	}

	ev := s.log.Info().
		Int64("order_id", t.OrderID).
		Str("from", string(t.From)).
		Str("to", status)
	if t.RejectionReason != "" {
		ev = ev.Str("rejection_reason", t.RejectionReason)
	}
	ev.Msg("order status changed")

	return nil
}
