// Package order implements the tenant-scoped order lifecycle: transactional
// placement with inventory reservation, cancellation with inventory
// restoration, and status transitions.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/product"
)

type Service struct {
	store     Store
	customers customer.Repository
	log       *logrus.Logger
}

func NewService(store Store, customers customer.Repository, log *logrus.Logger) *Service {
	return &Service{store: store, customers: customers, log: log}
}

// Place atomically validates the cart against live product state, reserves
// inventory, creates the order with its item snapshots and updates the
// customer aggregates. Any failure rolls everything back; nothing is retried.
func (s *Service) Place(ctx context.Context, tenantID string, req PlaceRequest) (*Order, error) {
	if req.CustomerID == "" || len(req.Items) == 0 {
		return nil, validationErr(ErrInvalidCustomer, "customer_id and items are required")
	}
	for _, li := range req.Items {
		if li.Quantity < 1 {
			return nil, validationErr(ErrProductNotFound, fmt.Sprintf("invalid quantity for product %s", li.ProductID))
		}
	}

	tax, err := optionalAmount(req.TaxAmount)
	if err != nil {
		return nil, validationErr(ErrInvalidCustomer, "invalid tax_amount")
	}
	shipping, err := optionalAmount(req.ShippingAmount)
	if err != nil {
		return nil, validationErr(ErrInvalidCustomer, "invalid shipping_amount")
	}
	discount, err := optionalAmount(req.DiscountAmount)
	if err != nil {
		return nil, validationErr(ErrInvalidCustomer, "invalid discount_amount")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cust, err := tx.CustomerForUpdate(ctx, tenantID, req.CustomerID)
	if err != nil {
		if err == customer.ErrNotFound {
			return nil, validationErr(ErrInvalidCustomer, "invalid customer")
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}

	orderID := uuid.NewString()
	subtotal := decimal.Zero
	items := make([]Item, 0, len(req.Items))

	for _, li := range req.Items {
		p, err := tx.ProductForUpdate(ctx, tenantID, li.ProductID)
		if err != nil {
			if err == product.ErrNotFound {
				return nil, validationErr(ErrProductNotFound, fmt.Sprintf("product %s not found", li.ProductID))
			}
			return nil, fmt.Errorf("load product %s: %w", li.ProductID, err)
		}
		if p.Status != product.StatusActive {
			return nil, validationErr(ErrProductUnavailable, fmt.Sprintf("product %s is not available", p.Name))
		}
		if p.TrackInventory && p.Inventory < li.Quantity {
			return nil, validationErr(ErrInsufficientInventory,
				fmt.Sprintf("insufficient inventory for %s, available: %d", p.Name, p.Inventory))
		}

		itemTotal := p.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
		subtotal = subtotal.Add(itemTotal)

		items = append(items, Item{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductSKU:   p.SKU,
			ProductImage: p.FirstImage(),
			Quantity:     li.Quantity,
			UnitPrice:    p.Price,
			TotalPrice:   itemTotal,
		})

		if p.TrackInventory {
			if err := tx.AdjustProduct(ctx, p.ID, -li.Quantity, li.Quantity); err != nil {
				return nil, fmt.Errorf("reserve inventory for %s: %w", p.ID, err)
			}
		}
	}

	now := time.Now().UTC()
	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	o := &Order{
		ID:              orderID,
		TenantID:        tenantID,
		CustomerID:      cust.ID,
		OrderNumber:     GenerateOrderNumber(),
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        subtotal,
		TaxAmount:       tax,
		ShippingAmount:  shipping,
		DiscountAmount:  discount,
		TotalAmount:     total,
		Currency:        "USD",
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if err := tx.InsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}
	if err := tx.ApplyCustomerOrder(ctx, cust.ID, total, now); err != nil {
		return nil, fmt.Errorf("update customer aggregates: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"tenant": tenantID,
		"order":  o.OrderNumber,
		"total":  total.String(),
		"items":  len(items),
	}).Info("order placed")

	return s.Get(ctx, tenantID, orderID)
}

// Cancel reverses the inventory and sales-count adjustments of every item and
// marks the order cancelled. Legal only from pending or processing.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := tx.OrderForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return ErrNotCancellable
	}

	items, err := tx.ItemsByOrder(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for _, it := range items {
		p, err := tx.ProductForUpdate(ctx, tenantID, it.ProductID)
		if err != nil {
			if err == product.ErrNotFound {
				// product deleted after the sale; nothing to restore
				continue
			}
			return fmt.Errorf("load product %s: %w", it.ProductID, err)
		}
		if !p.TrackInventory {
			continue
		}
		if err := tx.AdjustProduct(ctx, p.ID, it.Quantity, -it.Quantity); err != nil {
			return fmt.Errorf("restore inventory for %s: %w", p.ID, err)
		}
	}

	if err := tx.SetStatus(ctx, o.ID, StatusCancelled, nil, nil, nil); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"tenant": tenantID,
		"order":  o.OrderNumber,
	}).Info("order cancelled")
	return nil
}

// UpdateStatus moves the order along pending -> processing -> shipped ->
// delivered, with refunded reachable only from delivered. Shipping records
// the tracking number and timestamps.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, orderID, status, trackingNumber string) (*Order, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := tx.OrderForUpdate(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.Status, status) {
		return nil, validationErr(ErrInvalidTransition,
			fmt.Sprintf("cannot transition order from %s to %s", o.Status, status))
	}

	var tracking *string
	var shippedAt, deliveredAt *time.Time
	now := time.Now().UTC()
	switch status {
	case StatusShipped:
		if trackingNumber != "" {
			tracking = &trackingNumber
		}
		shippedAt = &now
	case StatusDelivered:
		deliveredAt = &now
	}

	if err := tx.SetStatus(ctx, o.ID, status, tracking, shippedAt, deliveredAt); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return s.Get(ctx, tenantID, orderID)
}

// Get returns the order hydrated with items and customer.
func (s *Service) Get(ctx context.Context, tenantID, orderID string) (*Order, error) {
	o, err := s.store.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if cust, err := s.customers.GetByID(ctx, tenantID, o.CustomerID); err == nil {
		o.Customer = cust
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, tenantID string, q Query) ([]Order, int, error) {
	return s.store.List(ctx, tenantID, q)
}

func (s *Service) Stats(ctx context.Context, tenantID string) (*Stats, error) {
	return s.store.Stats(ctx, tenantID, time.Now())
}

func optionalAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return d, nil
}
