package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/product"
)

// MemStore is an in-memory Store with the same locking semantics as PGStore:
// a transaction holds the store lock from Begin until Commit or Rollback, so
// concurrent placements are serialized the way row locks serialize them in
// Postgres. Used by tests and by local development without a database.
type MemStore struct {
	mu        sync.Mutex
	Products  map[string]*product.Product
	Customers map[string]*customer.Customer
	Orders    map[string]*Order
	Items     map[string][]Item
}

func NewMemStore() *MemStore {
	return &MemStore{
		Products:  make(map[string]*product.Product),
		Customers: make(map[string]*customer.Customer),
		Orders:    make(map[string]*Order),
		Items:     make(map[string][]Item),
	}
}

func (m *MemStore) Begin(ctx context.Context) (Tx, error) {
	m.mu.Lock()
	return &memTx{s: m}, nil
}

func (m *MemStore) GetByID(ctx context.Context, tenantID, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), m.Items[id]...)
	return &cp, nil
}

func (m *MemStore) List(ctx context.Context, tenantID string, q Query) ([]Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []Order
	for _, o := range m.Orders {
		if o.TenantID != tenantID {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.PaymentStatus != "" && o.PaymentStatus != q.PaymentStatus {
			continue
		}
		if q.CustomerID != "" && o.CustomerID != q.CustomerID {
			continue
		}
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if q.Offset > 0 {
		if q.Offset >= len(all) {
			all = nil
		} else {
			all = all[q.Offset:]
		}
	}
	if q.Limit > 0 && len(all) > q.Limit {
		all = all[:q.Limit]
	}
	return all, total, nil
}

func (m *MemStore) Stats(ctx context.Context, tenantID string, now time.Time) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	st := &Stats{}
	st.Revenue.Total = decimal.Zero
	st.Revenue.Monthly = decimal.Zero
	st.Revenue.Daily = decimal.Zero
	for _, o := range m.Orders {
		if o.TenantID != tenantID {
			continue
		}
		st.Orders.Total++
		if !o.CreatedAt.Before(monthStart) {
			st.Orders.Monthly++
		}
		if !o.CreatedAt.Before(dayStart) {
			st.Orders.Daily++
		}
		if o.PaymentStatus != PaymentPaid {
			continue
		}
		st.Revenue.Total = st.Revenue.Total.Add(o.TotalAmount)
		if !o.CreatedAt.Before(monthStart) {
			st.Revenue.Monthly = st.Revenue.Monthly.Add(o.TotalAmount)
		}
		if !o.CreatedAt.Before(dayStart) {
			st.Revenue.Daily = st.Revenue.Daily.Add(o.TotalAmount)
		}
	}
	return st, nil
}

// memTx applies mutations to the live maps immediately and keeps an undo log,
// so Rollback restores the pre-transaction state exactly.
type memTx struct {
	s    *MemStore
	done bool
	undo []func()
}

func (t *memTx) CustomerForUpdate(ctx context.Context, tenantID, customerID string) (*customer.Customer, error) {
	c, ok := t.s.Customers[customerID]
	if !ok || c.TenantID != tenantID {
		return nil, customer.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) ProductForUpdate(ctx context.Context, tenantID, productID string) (*product.Product, error) {
	p, ok := t.s.Products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) AdjustProduct(ctx context.Context, productID string, inventoryDelta, salesDelta int) error {
	p, ok := t.s.Products[productID]
	if !ok {
		return product.ErrNotFound
	}
	prevInv, prevSales := p.Inventory, p.SalesCount
	t.undo = append(t.undo, func() { p.Inventory, p.SalesCount = prevInv, prevSales })
	p.Inventory += inventoryDelta
	p.SalesCount += salesDelta
	if p.SalesCount < 0 {
		p.SalesCount = 0
	}
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *Order) error {
	cp := *o
	t.s.Orders[o.ID] = &cp
	t.undo = append(t.undo, func() { delete(t.s.Orders, o.ID) })
	return nil
}

func (t *memTx) InsertItems(ctx context.Context, items []Item) error {
	for _, it := range items {
		orderID := it.OrderID
		t.s.Items[orderID] = append(t.s.Items[orderID], it)
	}
	if len(items) > 0 {
		orderID := items[0].OrderID
		t.undo = append(t.undo, func() { delete(t.s.Items, orderID) })
	}
	return nil
}

func (t *memTx) ApplyCustomerOrder(ctx context.Context, customerID string, total decimal.Decimal, at time.Time) error {
	c, ok := t.s.Customers[customerID]
	if !ok {
		return customer.ErrNotFound
	}
	prev := *c
	t.undo = append(t.undo, func() { *c = prev })
	c.TotalOrders++
	c.TotalSpent = c.TotalSpent.Add(total)
	ts := at
	c.LastOrderAt = &ts
	return nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, tenantID, orderID string) (*Order, error) {
	o, ok := t.s.Orders[orderID]
	if !ok || o.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (t *memTx) ItemsByOrder(ctx context.Context, orderID string) ([]Item, error) {
	return append([]Item(nil), t.s.Items[orderID]...), nil
}

func (t *memTx) SetStatus(ctx context.Context, orderID, status string, trackingNumber *string, shippedAt, deliveredAt *time.Time) error {
	o, ok := t.s.Orders[orderID]
	if !ok {
		return ErrNotFound
	}
	prev := *o
	t.undo = append(t.undo, func() { *o = prev })
	o.Status = status
	if trackingNumber != nil {
		o.TrackingNumber = *trackingNumber
	}
	if shippedAt != nil {
		o.ShippedAt = shippedAt
	}
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}
