package marketapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

const (
	pathMyOrders      = "/api/orders/my_orders/"
	pathPendingOrders = "/api/orders/my_pending_orders/"
	pathCheckout      = "/api/orders/checkout/"

	routeOrderDetail  = "/api/orders/{id}/"
	routeOrderApprove = "/api/orders/{id}/approve/"
	routeOrderReject  = "/api/orders/{id}/reject/"
)

var _ ports.MarketAPI = (*Client)(nil)

type rejectRequest struct {
	Reason string `json:"reason"`
}

// MyOrders lists the orders placed by the current customer.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, pathMyOrders)
}

// PendingOrders lists the orders awaiting the current farmer's decision.
func (c *Client) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, pathPendingOrders)
}

func (c *Client) listOrders(ctx context.Context, path string) ([]domain.Order, error) {
	var out orderList
	if err := c.Do(ctx, http.MethodGet, path, path, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

func (c *Client) OrderDetail(ctx context.Context, id int64) (*domain.Order, error) {
	var out orderDTO
	err := c.Do(ctx, http.MethodGet, routeOrderDetail, fmt.Sprintf("/api/orders/%d/", id), nil, &out)
	if err != nil {
		if isHTTPStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
		}
		return nil, err
	}
	o := out.toDomain()
	return &o, nil
}

// Checkout turns the cart into an order. The returned order is empty when
// the backend answers without a body.
func (c *Client) Checkout(ctx context.Context) (*domain.Order, error) {
	var out orderDTO
	if err := c.Do(ctx, http.MethodPost, pathCheckout, pathCheckout, nil, &out); err != nil {
		return nil, err
	}
	o := out.toDomain()
	return &o, nil
}

func (c *Client) Approve(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, routeOrderApprove, fmt.Sprintf("/api/orders/%d/approve/", id), nil, nil)
}

// Reject declines an order. The reason is always sent, even when empty.
func (c *Client) Reject(ctx context.Context, id int64, reason string) error {
	return c.Do(ctx, http.MethodPost, routeOrderReject, fmt.Sprintf("/api/orders/%d/reject/", id),
		rejectRequest{Reason: reason}, nil)
}
