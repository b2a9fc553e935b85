package domain

import "time"

// Role determines which views and actions a user is offered.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleFarmer   Role = "FARMER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleFarmer, RoleAdmin:
		return true
	}
	return false
}

// Label returns the short human label used in headers and profiles.
func (r Role) Label() string {
	switch r {
	case RoleFarmer:
		return "Farmer"
	case RoleAdmin:
		return "Admin"
	default:
		return "Customer"
	}
}

// User is the identity returned by the who-am-I endpoint. It is fetched
// fresh on every dashboard entry and never persisted.
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// Tab names a dashboard section.
type Tab string

const (
	TabFeed    Tab = "feed"
	TabMyPosts Tab = "myPosts"
	TabOrders  Tab = "orders"
	TabCart    Tab = "cart"
	TabAdmin   Tab = "admin"
	TabProfile Tab = "profile"
)

// Tabs lists the dashboard sections available to the user, in display order.
func (u User) Tabs() []Tab {
	tabs := []Tab{TabFeed}
	if u.Role == RoleFarmer {
		tabs = append(tabs, TabMyPosts, TabOrders)
	}
	tabs = append(tabs, TabCart)
	if u.Role == RoleCustomer {
		tabs = append(tabs, TabOrders)
	}
	if u.Role == RoleAdmin {
		tabs = append(tabs, TabAdmin)
	}
	return append(tabs, TabProfile)
}
