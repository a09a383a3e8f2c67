package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/product"
)

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

const orderCols = `id, tenant_id, customer_id, order_number, status, payment_status,
	payment_method, subtotal::text, tax_amount::text, shipping_amount::text,
	discount_amount::text, total_amount::text, currency, billing_address,
	shipping_address, notes, tracking_number, shipped_at, delivered_at,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var subtotal, tax, shipping, discount, total string
	if err := row.Scan(&o.ID, &o.TenantID, &o.CustomerID, &o.OrderNumber, &o.Status,
		&o.PaymentStatus, &o.PaymentMethod, &subtotal, &tax, &shipping, &discount,
		&total, &o.Currency, &o.BillingAddress, &o.ShippingAddress, &o.Notes,
		&o.TrackingNumber, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if o.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return nil, err
	}
	if o.ShippingAmount, err = decimal.NewFromString(shipping); err != nil {
		return nil, err
	}
	if o.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) GetByID(ctx context.Context, tenantID, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(s.db.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1 AND tenant_id=$2
	`, id, tenantID))
	if err != nil {
		return nil, ErrNotFound
	}

	items, err := queryItems(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *PGStore) List(ctx context.Context, tenantID string, q Query) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	filter := `
		WHERE tenant_id=$1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR payment_status = $3)
		  AND ($4 = '' OR customer_id::text = $4)`

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+filter,
		tenantID, q.Status, q.PaymentStatus, q.CustomerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders`+filter+`
		ORDER BY created_at DESC LIMIT $5 OFFSET $6
	`, tenantID, q.Status, q.PaymentStatus, q.CustomerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (s *PGStore) Stats(ctx context.Context, tenantID string, now time.Time) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var st Stats
	var total, monthly, daily string
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid'), 0)::text,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid' AND created_at >= $2), 0)::text,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid' AND created_at >= $3), 0)::text
		FROM orders WHERE tenant_id=$1
	`, tenantID, startOfMonth, startOfDay).Scan(
		&st.Orders.Total, &st.Orders.Monthly, &st.Orders.Daily,
		&total, &monthly, &daily)
	if err != nil {
		return nil, err
	}
	if st.Revenue.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if st.Revenue.Monthly, err = decimal.NewFromString(monthly); err != nil {
		return nil, err
	}
	if st.Revenue.Daily, err = decimal.NewFromString(daily); err != nil {
		return nil, err
	}
	return &st, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, q queryer, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_sku, product_image,
		       quantity, unit_price::text, total_price::text
		FROM order_items WHERE order_id=$1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var unit, total string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.ProductSKU, &it.ProductImage, &it.Quantity, &unit, &total); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (t *pgTx) CustomerForUpdate(ctx context.Context, tenantID, customerID string) (*customer.Customer, error) {
	var c customer.Customer
	var spent string
	err := t.tx.QueryRow(ctx, `
		SELECT id, tenant_id, email, first_name, last_name, total_orders, total_spent::text
		FROM customers WHERE id=$1 AND tenant_id=$2
		FOR UPDATE
	`, customerID, tenantID).Scan(&c.ID, &c.TenantID, &c.Email, &c.FirstName,
		&c.LastName, &c.TotalOrders, &spent)
	if err != nil {
		return nil, customer.ErrNotFound
	}
	if c.TotalSpent, err = decimal.NewFromString(spent); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) ProductForUpdate(ctx context.Context, tenantID, productID string) (*product.Product, error) {
	var p product.Product
	var price string
	err := t.tx.QueryRow(ctx, `
		SELECT id, tenant_id, name, sku, images, price::text, status,
		       inventory, track_inventory, sales_count
		FROM products WHERE id=$1 AND tenant_id=$2
		FOR UPDATE
	`, productID, tenantID).Scan(&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.Images,
		&price, &p.Status, &p.Inventory, &p.TrackInventory, &p.SalesCount)
	if err != nil {
		return nil, product.ErrNotFound
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) AdjustProduct(ctx context.Context, productID string, inventoryDelta, salesDelta int) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE products
		SET inventory   = inventory + $2,
		    sales_count = GREATEST(0, sales_count + $3),
		    updated_at  = NOW()
		WHERE id=$1
	`, productID, inventoryDelta, salesDelta)
	return err
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders (id, tenant_id, customer_id, order_number, status,
			payment_status, payment_method, subtotal, tax_amount, shipping_amount,
			discount_amount, total_amount, currency, billing_address, shipping_address,
			notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
	`, o.ID, o.TenantID, o.CustomerID, o.OrderNumber, o.Status, o.PaymentStatus,
		o.PaymentMethod, o.Subtotal.String(), o.TaxAmount.String(),
		o.ShippingAmount.String(), o.DiscountAmount.String(), o.TotalAmount.String(),
		o.Currency, o.BillingAddress, o.ShippingAddress, o.Notes)
	return err
}

func (t *pgTx) InsertItems(ctx context.Context, items []Item) error {
	for _, it := range items {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name,
				product_sku, product_image, quantity, unit_price, total_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.ProductSKU,
			it.ProductImage, it.Quantity, it.UnitPrice.String(), it.TotalPrice.String()); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) ApplyCustomerOrder(ctx context.Context, customerID string, total decimal.Decimal, at time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE customers
		SET total_orders  = total_orders + 1,
		    total_spent   = total_spent + $2::numeric,
		    last_order_at = $3,
		    updated_at    = NOW()
		WHERE id=$1
	`, customerID, total.String(), at)
	return err
}

func (t *pgTx) OrderForUpdate(ctx context.Context, tenantID, orderID string) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1 AND tenant_id=$2
		FOR UPDATE
	`, orderID, tenantID))
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (t *pgTx) ItemsByOrder(ctx context.Context, orderID string) ([]Item, error) {
	return queryItems(ctx, t.tx, orderID)
}

func (t *pgTx) SetStatus(ctx context.Context, orderID, status string, trackingNumber *string, shippedAt, deliveredAt *time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE orders
		SET status          = $2,
		    tracking_number = COALESCE($3, tracking_number),
		    shipped_at      = COALESCE($4, shipped_at),
		    delivered_at    = COALESCE($5, delivered_at),
		    updated_at      = NOW()
		WHERE id=$1
	`, orderID, status, trackingNumber, shippedAt, deliveredAt)
	return err
}
