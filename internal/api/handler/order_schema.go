package handler

import "time"

type orderItemResponse struct {
	ID         int64   `json:"id"`
	PostTitle  string  `json:"post_title"`
	FarmerName string  `json:"farmer_name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	TotalPrice float64 `json:"total_price"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	Status          string              `json:"status"`
	Icon            string              `json:"icon"`
	Note            string              `json:"note,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	TotalAmount     float64             `json:"total_amount"`
	ItemCount       int                 `json:"item_count"`
	Items           []orderItemResponse `json:"items"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Expanded        bool                `json:"expanded,omitempty"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type ordersEvent struct {
	Loading   bool            `json:"loading"`
	Orders    []orderResponse `json:"orders"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type transitionResponse struct {
	OrderID         int64     `json:"order_id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	ObservedAt      time.Time `json:"observed_at"`
}

type historyResponse struct {
	OrderID     int64                `json:"order_id"`
	Transitions []transitionResponse `json:"transitions"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
