package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

// OrderService exposes the order endpoints to the CLI and console. The
// backend authorizes every call; the service only logs outcomes.
type OrderService struct {
	api    ports.OrdersAPI
	logger zerolog.Logger
}

func NewOrderService(api ports.OrdersAPI, logger zerolog.Logger) *OrderService {
	return &OrderService{api: api, logger: logger}
}

func (s *OrderService) MyOrders(ctx context.Context) ([]domain.Order, error) {
	return s.api.MyOrders(ctx)
}

func (s *OrderService) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	return s.api.PendingOrders(ctx)
}

func (s *OrderService) Detail(ctx context.Context, id int64) (*domain.Order, error) {
	return s.api.OrderDetail(ctx, id)
}

// Checkout turns the current cart into an order.
func (s *OrderService) Checkout(ctx context.Context) (*domain.Order, error) {
	order, err := s.api.Checkout(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("checkout failed")
		return nil, err
	}
	s.logger.Info().Int64("order_id", order.ID).Float64("total", order.TotalAmount).Msg("order placed")
	return order, nil
}

func (s *OrderService) Approve(ctx context.Context, id int64) error {
	if err := s.api.Approve(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("approve failed")
		return err
	}
	s.logger.Info().Int64("order_id", id).Msg("order approved")
	return nil
}

// Reject declines an order with a reason. Surrounding whitespace is trimmed;
// an empty reason is still sent.
func (s *OrderService) Reject(ctx context.Context, id int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if err := s.api.Reject(ctx, id, reason); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("reject failed")
		return err
	}
	s.logger.Info().Int64("order_id", id).Str("reason", reason).Msg("order rejected")
	return nil
}
