package order

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/product"
)

const testTenant = "tenant-1"

// memCustomers adapts the MemStore customer map to customer.Repository, which
// the service only uses to hydrate orders.
type memCustomers struct{ s *MemStore }

func (r *memCustomers) GetByID(ctx context.Context, tenantID, id string) (*customer.Customer, error) {
	c, ok := r.s.Customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, customer.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomers) List(ctx context.Context, tenantID string, q customer.Query) ([]customer.Customer, int, error) {
	return nil, 0, nil
}
func (r *memCustomers) Create(ctx context.Context, c *customer.Customer) error { return nil }
func (r *memCustomers) Update(ctx context.Context, c *customer.Customer) error { return nil }
func (r *memCustomers) Delete(ctx context.Context, tenantID, id string) error  { return nil }
func (r *memCustomers) EmailExists(ctx context.Context, tenantID, email, excludeID string) (bool, error) {
	return false, nil
}

func newTestService() (*Service, *MemStore) {
	store := NewMemStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, &memCustomers{s: store}, log), store
}

func seedCustomer(store *MemStore, id string) *customer.Customer {
	c := &customer.Customer{
		ID:         id,
		TenantID:   testTenant,
		Email:      id + "@example.com",
		FirstName:  "Ana",
		LastName:   "Gomez",
		Status:     "active",
		TotalSpent: decimal.Zero,
	}
	store.Customers[id] = c
	return c
}

func seedProduct(store *MemStore, id, price string, inventory int) *product.Product {
	p := &product.Product{
		ID:             id,
		TenantID:       testTenant,
		Name:           "Product " + id,
		SKU:            "SKU-" + id,
		Price:          decimal.RequireFromString(price),
		Images:         []string{"https://cdn.example.com/" + id + ".jpg"},
		Inventory:      inventory,
		TrackInventory: true,
		Status:         product.StatusActive,
	}
	store.Products[id] = p
	return p
}

func TestPlaceOrder(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)
	seedProduct(store, "p2", "3.50", 8)

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID:     "c1",
		Items:          []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
		PaymentMethod:  "card",
		TaxAmount:      "1.50",
		ShippingAmount: "5.00",
		DiscountAmount: "2.00",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("23.50")), "subtotal %s", o.Subtotal)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("28.00")), "total %s", o.TotalAmount)
	assert.Regexp(t, `^ORD-`, o.OrderNumber)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Product p1", o.Items[0].ProductName)
	assert.Equal(t, "SKU-p1", o.Items[0].ProductSKU)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	require.NotNil(t, o.Customer)
	assert.Equal(t, "c1", o.Customer.ID)

	// inventory reserved, sales counted
	assert.Equal(t, 3, store.Products["p1"].Inventory)
	assert.Equal(t, 2, store.Products["p1"].SalesCount)
	assert.Equal(t, 7, store.Products["p2"].Inventory)

	// customer aggregates updated
	cust := store.Customers["c1"]
	assert.Equal(t, 1, cust.TotalOrders)
	assert.True(t, cust.TotalSpent.Equal(decimal.RequireFromString("28.00")))
	assert.NotNil(t, cust.LastOrderAt)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	_, err := svc.Place(context.Background(), testTenant, PlaceRequest{CustomerID: "c1"})
	assert.ErrorIs(t, err, ErrInvalidCustomer)

	_, err = svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "nope",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidCustomer)

	_, err = svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
		TaxAmount:  "-1",
	})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
}

func TestPlaceOrderInsufficientInventory(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 2)

	_, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 3}},
	})
	require.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Contains(t, err.Error(), "available: 2")
	assert.Equal(t, 2, store.Products["p1"].Inventory)
	assert.Empty(t, store.Orders)
}

func TestPlaceOrderInactiveProduct(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	p := seedProduct(store, "p1", "10.00", 5)
	p.Status = product.StatusDraft

	_, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

// A failure on a later line item must undo reservations already made for
// earlier items in the same request.
func TestPlaceOrderRollsBackOnPartialFailure(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	_, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "missing", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, 5, store.Products["p1"].Inventory)
	assert.Equal(t, 0, store.Products["p1"].SalesCount)
	assert.Empty(t, store.Orders)
	assert.Equal(t, 0, store.Customers["c1"].TotalOrders)
}

func TestPlaceOrderUntrackedInventory(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	p := seedProduct(store, "p1", "10.00", 0)
	p.TrackInventory = false

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t, 0, store.Products["p1"].Inventory)
	assert.Equal(t, 0, store.Products["p1"].SalesCount)
}

func TestPlaceOrderTenantIsolation(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	_, err := svc.Place(context.Background(), "other-tenant", PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
}

// Concurrent placements against a single product must never oversell: with 5
// units in stock, exactly 5 of 20 single-unit orders succeed.
func TestConcurrentPlacementsNeverOversell(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Place(context.Background(), testTenant, PlaceRequest{
				CustomerID: "c1",
				Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, ErrInsufficientInventory)
			insufficient++
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 15, insufficient)
	assert.Equal(t, 0, store.Products["p1"].Inventory)
	assert.Equal(t, 5, store.Products["p1"].SalesCount)
	assert.Len(t, store.Orders, 5)
	assert.Equal(t, 5, store.Customers["c1"].TotalOrders)
}

func TestCancelRestoresInventory(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.Products["p1"].Inventory)

	require.NoError(t, svc.Cancel(context.Background(), testTenant, o.ID))

	assert.Equal(t, 5, store.Products["p1"].Inventory)
	assert.Equal(t, 0, store.Products["p1"].SalesCount)
	assert.Equal(t, StatusCancelled, store.Orders[o.ID].Status)

	// already cancelled
	err = svc.Cancel(context.Background(), testTenant, o.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancelShippedOrderFails(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusProcessing, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusShipped, "TRK123")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), testTenant, o.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, 4, store.Products["p1"].Inventory)
}

func TestCancelSkipsDeletedProducts(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)
	seedProduct(store, "p2", "4.00", 5)

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 2}},
	})
	require.NoError(t, err)

	delete(store.Products, "p1")
	require.NoError(t, svc.Cancel(context.Background(), testTenant, o.ID))
	assert.Equal(t, 5, store.Products["p2"].Inventory)
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedProduct(store, "p1", "10.00", 5)

	o, err := svc.Place(context.Background(), testTenant, PlaceRequest{
		CustomerID: "c1",
		Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	// skipping processing is not allowed
	_, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusShipped, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	o2, err := svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o2.Status)

	o2, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusShipped, "TRK999")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o2.Status)
	assert.Equal(t, "TRK999", o2.TrackingNumber)
	assert.NotNil(t, o2.ShippedAt)

	// refund requires delivery first
	_, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusRefunded, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	o2, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusDelivered, "")
	require.NoError(t, err)
	assert.NotNil(t, o2.DeliveredAt)

	o2, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusRefunded, "")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, o2.Status)

	// terminal
	_, err = svc.UpdateStatus(context.Background(), testTenant, o.ID, StatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdateStatus(context.Background(), testTenant, "missing", StatusProcessing, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndStats(t *testing.T) {
	svc, store := newTestService()
	seedCustomer(store, "c1")
	seedCustomer(store, "c2")
	seedProduct(store, "p1", "10.00", 100)

	for _, cid := range []string{"c1", "c1", "c2"} {
		_, err := svc.Place(context.Background(), testTenant, PlaceRequest{
			CustomerID: cid,
			Items:      []LineItem{{ProductID: "p1", Quantity: 1}},
		})
		require.NoError(t, err)
	}

	all, total, err := svc.List(context.Background(), testTenant, Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	byCustomer, total, err := svc.List(context.Background(), testTenant, Query{CustomerID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, o := range byCustomer {
		assert.Equal(t, "c1", o.CustomerID)
	}

	paged, total, err := svc.List(context.Background(), testTenant, Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 2)

	st, err := svc.Stats(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Orders.Total)
	assert.Equal(t, 3, st.Orders.Daily)
	// nothing paid yet
	assert.True(t, st.Revenue.Total.IsZero())

	for id := range store.Orders {
		store.Orders[id].PaymentStatus = PaymentPaid
	}
	st, err = svc.Stats(context.Background(), testTenant)
	require.NoError(t, err)
	assert.True(t, st.Revenue.Total.Equal(decimal.RequireFromString("30.00")))
}
