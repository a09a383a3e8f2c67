package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda/internal/customer"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

const (
	PaymentPending           = "pending"
	PaymentPaid              = "paid"
	PaymentFailed            = "failed"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

// transitions is the forward state machine. Cancellation is handled
// separately by Cancel and is legal only from pending or processing.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string             `json:"id"`
	TenantID        string             `json:"tenant_id"`
	CustomerID      string             `json:"customer_id"`
	OrderNumber     string             `json:"order_number"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	PaymentMethod   string             `json:"payment_method"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	ShippingAmount  decimal.Decimal    `json:"shipping_amount"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Currency        string             `json:"currency"`
	BillingAddress  json.RawMessage    `json:"billing_address,omitempty"`
	ShippingAddress json.RawMessage    `json:"shipping_address,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	TrackingNumber  string             `json:"tracking_number,omitempty"`
	ShippedAt       *time.Time         `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time         `json:"delivered_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Items           []Item             `json:"items,omitempty"`
	Customer        *customer.Customer `json:"customer,omitempty"`
}

// Item is an immutable snapshot of the product at order time, so historical
// orders are unaffected by later catalog edits.
type Item struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSKU   string          `json:"product_sku"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// Stats are tenant-scoped order counts and paid revenue sums.
type Stats struct {
	Orders struct {
		Total   int `json:"total"`
		Monthly int `json:"monthly"`
		Daily   int `json:"daily"`
	} `json:"orders"`
	Revenue struct {
		Total   decimal.Decimal `json:"total"`
		Monthly decimal.Decimal `json:"monthly"`
		Daily   decimal.Decimal `json:"daily"`
	} `json:"revenue"`
}
