package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	City        string          `json:"city,omitempty"`
	State       string          `json:"state,omitempty"`
	Country     string          `json:"country,omitempty"`
	ZipCode     string          `json:"zip_code,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      string          `json:"status"`
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateCustomerRequest payload for customer creation.
// swagger:model CreateCustomerRequest
type CreateCustomerRequest struct {
	Email     string `json:"email" example:"jane@example.com"`
	FirstName string `json:"first_name" example:"Jane"`
	LastName  string `json:"last_name" example:"Doe"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`
}

// UpdateCustomerRequest payload for partial update.
// swagger:model UpdateCustomerRequest
type UpdateCustomerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`
}
