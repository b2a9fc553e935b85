package ports

import (
	"context"

	"github.com/atongani/market-client/internal/core/domain"
)

// TransitionRepository persists observed order status changes to an audit trail.
type TransitionRepository interface {
	InsertTransition(ctx context.Context, t domain.OrderTransition) error
}

// TransitionService handles a single observed status change.
type TransitionService interface {
	Process(ctx context.Context, t domain.OrderTransition) error
}
