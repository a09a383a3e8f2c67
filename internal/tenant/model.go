package tenant

import "time"

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
)

type Tenant struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Domain             string    `json:"domain"`
	Subdomain          string    `json:"subdomain"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Logo               string    `json:"logo,omitempty"`
	Status             string    `json:"status"`
	SubscriptionPlan   string    `json:"subscription_plan"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
