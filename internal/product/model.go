// Package product provides the repository interface and PostgreSQL implementation
// for managing the tenant-scoped product catalog.
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

type Product struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"tenant_id"`
	CategoryID     string           `json:"category_id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description,omitempty"`
	SKU            string           `json:"sku"`
	Price          decimal.Decimal  `json:"price"`
	ComparePrice   *decimal.Decimal `json:"compare_price,omitempty"`
	CostPrice      *decimal.Decimal `json:"cost_price,omitempty"`
	Images         []string         `json:"images"`
	Inventory      int              `json:"inventory"`
	TrackInventory bool             `json:"track_inventory"`
	Tags           []string         `json:"tags"`
	Status         string           `json:"status"`
	IsFeatured     bool             `json:"is_featured"`
	SalesCount     int              `json:"sales_count"`
	ViewCount      int              `json:"view_count"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// FirstImage returns the primary image or empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name           string   `json:"name"        example:"Mechanical Keyboard"`
	Slug           string   `json:"slug"        example:"mechanical-keyboard"`
	Description    string   `json:"description" example:"RGB 60%"`
	SKU            string   `json:"sku"         example:"KEYB-0001"`
	Price          string   `json:"price"       example:"199.90"`
	ComparePrice   string   `json:"compare_price"`
	CostPrice      string   `json:"cost_price"`
	CategoryID     string   `json:"category_id"`
	Images         []string `json:"images"`
	Inventory      int      `json:"inventory"   example:"10"`
	TrackInventory *bool    `json:"track_inventory"`
	Tags           []string `json:"tags"`
	Status         string   `json:"status"      example:"draft"`
	IsFeatured     bool     `json:"is_featured"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Description    string   `json:"description"`
	SKU            string   `json:"sku"`
	Price          string   `json:"price"`
	ComparePrice   string   `json:"compare_price"`
	CostPrice      string   `json:"cost_price"`
	CategoryID     string   `json:"category_id"`
	Images         []string `json:"images"`
	Inventory      *int     `json:"inventory"`
	TrackInventory *bool    `json:"track_inventory"`
	Tags           []string `json:"tags"`
	Status         string   `json:"status"`
	IsFeatured     *bool    `json:"is_featured"`
}

// BulkStatusRequest payload for bulk status updates.
// swagger:model BulkStatusRequest
type BulkStatusRequest struct {
	ProductIDs []string `json:"product_ids"`
	Status     string   `json:"status" example:"archived"`
}
