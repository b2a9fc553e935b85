package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/service"
)

// OrderService is the subset of *service.OrderService the console uses.
type OrderService interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	Detail(ctx context.Context, id int64) (*domain.Order, error)
	Checkout(ctx context.Context) (*domain.Order, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
}

// TransitionHistory reads the recorded status changes of an order.
type TransitionHistory interface {
	History(ctx context.Context, orderID int64) ([]domain.OrderTransition, error)
}

// OrdersStream is a live orders view, normally a *service.OrdersView.
type OrdersStream interface {
	Start(ctx context.Context) error
	Stop()
	Toggle(id int64)
	Updates() <-chan struct{}
	State() service.OrdersViewState
}

// OrderHandler handles the order routes of the dashboard.
type OrderHandler struct {
	service   OrderService
	history   TransitionHistory
	newStream func() OrdersStream
	log       zerolog.Logger
}

// NewOrderHandler creates an OrderHandler. history may be nil when no audit
// store is configured.
func NewOrderHandler(svc OrderService, history TransitionHistory, newStream func() OrdersStream, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, history: history, newStream: newStream, log: log}
}

// Mine handles GET /dashboard/orders.
//
// @Summary      List the customer's orders
// @Tags         orders
// @Produce      json
// @Success      200  {object}  orderListResponse
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /dashboard/orders [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	orders, err := h.service.MyOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderListResponse(orders))
}

// Pending handles GET /dashboard/orders/pending.
//
// @Summary      List orders awaiting the farmer's decision
// @Tags         orders
// @Produce      json
// @Success      200  {object}  orderListResponse
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /dashboard/orders/pending [get]
func (h *OrderHandler) Pending(c echo.Context) error {
	orders, err := h.service.PendingOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderListResponse(orders))
}

// Detail handles GET /dashboard/orders/:id.
//
// @Summary      Get one order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /dashboard/orders/{id} [get]
func (h *OrderHandler) Detail(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	order, err := h.service.Detail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(*order))
}

// History handles GET /dashboard/orders/:id/history.
//
// @Summary      Recorded status changes of one order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  historyResponse
// @Failure      400  {object}  map[string]string
// @Router       /dashboard/orders/{id}/history [get]
func (h *OrderHandler) History(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	if h.history == nil {
		return c.JSON(http.StatusOK, toHistoryResponse(id, nil))
	}
	ts, err := h.history.History(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponse(id, ts))
}

// Checkout handles POST /dashboard/orders/checkout.
//
// @Summary      Place an order from the cart
// @Tags         orders
// @Produce      json
// @Success      201  {object}  orderResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/orders/checkout [post]
func (h *OrderHandler) Checkout(c echo.Context) error {
	order, err := h.service.Checkout(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Approve handles POST /dashboard/orders/:id/approve.
//
// @Summary      Approve an order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	if err := h.service.Approve(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Order approved"})
}

// Reject handles POST /dashboard/orders/:id/reject.
//
// @Summary      Reject an order with a reason
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Order id"
// @Param        body  body      rejectRequest  true  "Rejection reason"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /dashboard/orders/{id}/reject [post]
func (h *OrderHandler) Reject(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Reject(c.Request().Context(), id, req.Reason); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Order rejected"})
}

// Stream handles GET /dashboard/orders/stream. The orders are polled for as
// long as the client keeps the connection open; every applied poll is sent
// as an "orders" server-sent event.
//
// @Summary      Live order updates
// @Tags         orders
// @Produce      text/event-stream
// @Param        expand  query     int  false  "Order id to show expanded"
// @Success      200     {object}  ordersEvent
// @Router       /dashboard/orders/stream [get]
func (h *OrderHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	view := h.newStream()
	if raw := c.QueryParam("expand"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			view.Toggle(id)
		}
	}
	if err := view.Start(ctx); err != nil {
		return err
	}
	defer view.Stop()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	h.log.Debug().Msg("orders stream opened")
	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("orders stream closed")
			return nil
		case <-view.Updates():
			if err := writeEvent(res, "orders", toOrdersEvent(view.State())); err != nil {
				h.log.Debug().Err(err).Msg("orders stream write failed")
				return nil
			}
		}
	}
}

func writeEvent(res *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return id, nil
}
