package handler

import (
	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/service"
)

// --- Domain → Response ---

func toOrderResponse(o domain.Order) orderResponse {
	status := o.Status.Display()
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:         it.ID,
			PostTitle:  it.PostTitle,
			FarmerName: it.FarmerName,
			Quantity:   it.Quantity,
			Unit:       it.Unit,
			TotalPrice: it.TotalPrice,
		})
	}
	return orderResponse{
		ID:              o.ID,
		Status:          string(status),
		Icon:            status.Icon(),
		Note:            status.Note(),
		CreatedAt:       o.CreatedAt,
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
		Items:           items,
		RejectionReason: o.Rejection(),
	}
}

func toOrderListResponse(orders []domain.Order) orderListResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return orderListResponse{Orders: out}
}

func toOrdersEvent(s service.OrdersViewState) ordersEvent {
	orders := make([]orderResponse, 0, len(s.Orders))
	for _, o := range s.Orders {
		r := toOrderResponse(o)
		r.Expanded = s.HasExpanded && s.Expanded == o.ID
		orders = append(orders, r)
	}
	return ordersEvent{
		Loading:   s.Loading,
		Orders:    orders,
		Error:     s.ErrorMessage,
		UpdatedAt: s.UpdatedAt,
	}
}

func toHistoryResponse(orderID int64, ts []domain.OrderTransition) historyResponse {
	out := make([]transitionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, transitionResponse{
			OrderID:         t.OrderID,
			From:            string(t.From),
			To:              string(t.To),
			RejectionReason: t.RejectionReason,
			ObservedAt:      t.ObservedAt,
		})
	}
	return historyResponse{OrderID: orderID, Transitions: out}
}
