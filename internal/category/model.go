package category

import "time"

type Category struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest payload for category creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name        string  `json:"name" example:"Keyboards"`
	Slug        string  `json:"slug" example:"keyboards"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	ParentID    *string `json:"parent_id"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateCategoryRequest payload for partial update.
// swagger:model UpdateCategoryRequest
type UpdateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	ParentID    *string `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}
