package domain

import (
	"errors"
	"fmt"
	"time"
)

// CurrencySymbol prefixes every amount shown to the user (Philippine peso).
const CurrencySymbol = "₱"

// OrderStatus represents the lifecycle state of an order. The lifecycle
// itself is owned by the backend; the client only displays it.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusApproved   OrderStatus = "APPROVED"
	StatusRejected   OrderStatus = "REJECTED"
	StatusCompleted  OrderStatus = "COMPLETED"
)

var ErrOrderNotFound = errors.New("order not found")

// Known reports whether s is a status with dedicated presentation.
// Anything else is displayed as pending.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusInProgress, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Display returns the status used for presentation, folding unknown
// values into StatusPending.
func (s OrderStatus) Display() OrderStatus {
	if s.Known() {
		return s
	}
	return StatusPending
}

// Icon returns the status glyph shown next to the badge.
func (s OrderStatus) Icon() string {
	switch s {
	case StatusInProgress:
		return "⏳"
	case StatusApproved:
		return "✅"
	case StatusRejected:
		return "❌"
	case StatusCompleted:
		return "🎉"
	default:
		return "📋"
	}
}

// Note returns the explanatory line shown under an expanded order.
func (s OrderStatus) Note() string {
	switch s {
	case StatusInProgress:
		return "This order is awaiting farmer approval. You will be notified once the farmer responds."
	case StatusApproved:
		return "Your order has been approved by the farmer!"
	case StatusRejected:
		return "Items have been returned to your cart. You can modify quantities and try again."
	}
	return ""
}

// FormatAmount renders an amount with the currency symbol and two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol, v)
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID         int64   `json:"id"`
	PostTitle  string  `json:"post_title"`
	FarmerName string  `json:"farmer_name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	TotalPrice float64 `json:"total_price"`
}

// Order is a read-only snapshot of a backend order.
type Order struct {
	ID              int64       `json:"id"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	TotalAmount     float64     `json:"total_amount"`
	Items           []OrderItem `json:"items"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
}

// Rejection returns the rejection reason only when the order is rejected.
func (o Order) Rejection() string {
	if o.Status != StatusRejected {
		return ""
	}
	return o.RejectionReason
}

// OrderTransition records an observed status change between two
// consecutive snapshots of the same order.
type OrderTransition struct {
	OrderID         int64
	From            OrderStatus
	To              OrderStatus
	RejectionReason string
	ObservedAt      time.Time
}

// DiffStatuses returns a transition for every order present in both
// snapshots whose status differs. Orders that appear or disappear are
// not reported.
func DiffStatuses(prev, next []Order, at time.Time) []OrderTransition {
	if len(prev) == 0 {
		return nil
	}
	before := make(map[int64]OrderStatus, len(prev))
	for _, o := range prev {
		before[o.ID] = o.Status
	}
	var out []OrderTransition
	for _, o := range next {
		from, ok := before[o.ID]
		if !ok || from == o.Status {
			continue
		}
		out = append(out, OrderTransition{
			OrderID:         o.ID,
			From:            from,
			To:              o.Status,
			RejectionReason: o.Rejection(),
			ObservedAt:      at,
		})
	}
	return out
}
