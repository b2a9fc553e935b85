package marketapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/atongani/market-client/internal/core/domain"
)

// decimal accepts the backend's decimal fields whether they arrive as JSON
// numbers or as strings such as "12.50". Unparsable values decode to 0.
type decimal float64

func (d *decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*d = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		v = 0
	}
	*d = decimal(v)
	return nil
}

// parseTime accepts RFC 3339 with or without fractional seconds. Anything
// else yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type userDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	DateJoined string `json:"date_joined"`
}

func (u userDTO) toDomain() domain.User {
	return domain.User{
		ID:       u.ID,
		Username: u.Username,
		Role:     domain.Role(strings.ToUpper(u.Role)),
		Email:    u.Email,
		JoinedAt: parseTime(u.DateJoined),
	}
}

type postRef struct {
	Title string `json:"title"`
}

type orderItemDTO struct {
	ID         int64    `json:"id"`
	Post       *postRef `json:"post"`
	PostTitle  string   `json:"post_title"`
	FarmerName string   `json:"farmer_name"`
	Quantity   decimal  `json:"quantity"`
	Unit       string   `json:"unit"`
	TotalPrice decimal  `json:"total_price"`
}

func (i orderItemDTO) toDomain() domain.OrderItem {
	title := i.PostTitle
	if i.Post != nil && i.Post.Title != "" {
		title = i.Post.Title
	}
	return domain.OrderItem{
		ID:         i.ID,
		PostTitle:  title,
		FarmerName: i.FarmerName,
		Quantity:   float64(i.Quantity),
		Unit:       i.Unit,
		TotalPrice: float64(i.TotalPrice),
	}
}

type orderDTO struct {
	ID              int64          `json:"id"`
	Status          string         `json:"status"`
	CreatedAt       string         `json:"created_at"`
	TotalAmount     decimal        `json:"total_amount"`
	Items           []orderItemDTO `json:"items"`
	RejectionReason *string        `json:"rejection_reason"`
}

func (o orderDTO) toDomain() domain.Order {
	out := domain.Order{
		ID:          o.ID,
		Status:      domain.OrderStatus(o.Status),
		CreatedAt:   parseTime(o.CreatedAt),
		TotalAmount: float64(o.TotalAmount),
		Items:       make([]domain.OrderItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, it.toDomain())
	}
	if o.RejectionReason != nil {
		out.RejectionReason = *o.RejectionReason
	}
	return out
}

// orderList decodes either a bare array or a paginated {"results": [...]}
// envelope. null decodes to an empty list.
type orderList []orderDTO

func (l *orderList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '{' {
		var page struct {
			Results []orderDTO `json:"results"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		*l = page.Results
		return nil
	}
	var items []orderDTO
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

func (l orderList) toDomain() []domain.Order {
	out := make([]domain.Order, 0, len(l))
	for _, o := range l {
		out = append(out, o.toDomain())
	}
	return out
}
