package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/product"
)

var (
	ErrNotFound              = errors.New("order not found")
	ErrInvalidCustomer       = errors.New("invalid customer")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductUnavailable    = errors.New("product is not available")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrNotCancellable        = errors.New("order cannot be cancelled")
	ErrInvalidTransition     = errors.New("invalid status transition")
)

// ValidationError carries a caller-facing message while remaining matchable
// against the sentinel errors above via errors.Is.
type ValidationError struct {
	Kind error
	Msg  string
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return e.Kind }

func validationErr(kind error, msg string) error {
	return &ValidationError{Kind: kind, Msg: msg}
}

type Query struct {
	Status        string
	PaymentStatus string
	CustomerID    string
	Limit         int
	Offset        int
}

// Tx is the scoped unit of work for placement, cancellation and status
// transitions. Every path must end in Commit or Rollback.
type Tx interface {
	// CustomerForUpdate row-locks and returns the customer, tenant-scoped.
	CustomerForUpdate(ctx context.Context, tenantID, customerID string) (*customer.Customer, error)
	// ProductForUpdate row-locks and returns the product, tenant-scoped.
	ProductForUpdate(ctx context.Context, tenantID, productID string) (*product.Product, error)
	// AdjustProduct applies inventory += inventoryDelta and
	// salesCount = max(0, salesCount + salesDelta).
	AdjustProduct(ctx context.Context, productID string, inventoryDelta, salesDelta int) error
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []Item) error
	// ApplyCustomerOrder bumps totalOrders, adds total to totalSpent and
	// records lastOrderAt.
	ApplyCustomerOrder(ctx context.Context, customerID string, total decimal.Decimal, at time.Time) error
	// OrderForUpdate row-locks and returns the order without items.
	OrderForUpdate(ctx context.Context, tenantID, orderID string) (*Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]Item, error)
	SetStatus(ctx context.Context, orderID, status string, trackingNumber *string, shippedAt, deliveredAt *time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
	// GetByID returns the order with its items, tenant-scoped.
	GetByID(ctx context.Context, tenantID, id string) (*Order, error)
	List(ctx context.Context, tenantID string, q Query) ([]Order, int, error)
	Stats(ctx context.Context, tenantID string, now time.Time) (*Stats, error)
}
