package order

import "encoding/json"

// LineItem is a product+quantity entry in a placement request.
// swagger:model LineItem
type LineItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// PlaceRequest is the payload for order placement.
// swagger:model PlaceRequest
type PlaceRequest struct {
	CustomerID      string          `json:"customer_id" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items           []LineItem      `json:"items"`
	BillingAddress  json.RawMessage `json:"billing_address"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method" example:"card"`
	TaxAmount       string          `json:"tax_amount,omitempty"      example:"1.50"`
	ShippingAmount  string          `json:"shipping_amount,omitempty" example:"5.00"`
	DiscountAmount  string          `json:"discount_amount,omitempty" example:"0"`
	Notes           string          `json:"notes,omitempty"`
}

// UpdateStatusRequest is the payload for order status transitions.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status         string `json:"status" example:"shipped"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}
