package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("customer not found")
	ErrEmailTaken = errors.New("customer email already exists")
	ErrHasOrders  = errors.New("cannot delete customer with existing orders")
)

type Query struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	List(ctx context.Context, tenantID string, q Query) ([]Customer, int, error)
	GetByID(ctx context.Context, tenantID, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, tenantID, id string) error
	EmailExists(ctx context.Context, tenantID, email, excludeID string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const customerCols = `id, tenant_id, email, first_name, last_name, phone, address,
	city, state, country, zip_code, notes, status, total_orders, total_spent::text,
	last_order_at, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	var spent string
	if err := row.Scan(&c.ID, &c.TenantID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.Address, &c.City, &c.State, &c.Country, &c.ZipCode, &c.Notes,
		&c.Status, &c.TotalOrders, &spent, &c.LastOrderAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(spent)
	if err != nil {
		return nil, err
	}
	c.TotalSpent = d
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, tenantID string, q Query) ([]Customer, int, error) {
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
	search := strings.TrimSpace(q.Search)

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers
		WHERE tenant_id=$1
		  AND ($2 = '' OR first_name ILIKE '%'||$2||'%' OR last_name ILIKE '%'||$2||'%' OR email ILIKE '%'||$2||'%')
	`, tenantID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+customerCols+` FROM customers
		WHERE tenant_id=$1
		  AND ($2 = '' OR first_name ILIKE '%'||$2||'%' OR last_name ILIKE '%'||$2||'%' OR email ILIKE '%'||$2||'%')
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, tenantID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, tenantID, id string) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scanCustomer(r.db.QueryRow(ctx, `
		SELECT `+customerCols+` FROM customers WHERE id=$1 AND tenant_id=$2
	`, id, tenantID))
	if err != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *PGRepo) Create(ctx context.Context, c *Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, tenant_id, email, first_name, last_name, phone,
			address, city, state, country, zip_code, notes, status,
			total_orders, total_spent, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,0,0,NOW(),NOW())
	`, c.ID, c.TenantID, c.Email, c.FirstName, c.LastName, c.Phone,
		c.Address, c.City, c.State, c.Country, c.ZipCode, c.Notes, c.Status)
	if err != nil {
		// UNIQUE on (email, tenant_id)
		return ErrEmailTaken
	}
	return nil
}

func (r *PGRepo) Update(ctx context.Context, c *Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET email      = COALESCE(NULLIF($3,''), email),
		    first_name = COALESCE(NULLIF($4,''), first_name),
		    last_name  = COALESCE(NULLIF($5,''), last_name),
		    phone      = COALESCE(NULLIF($6,''), phone),
		    address    = COALESCE(NULLIF($7,''), address),
		    city       = COALESCE(NULLIF($8,''), city),
		    state      = COALESCE(NULLIF($9,''), state),
		    country    = COALESCE(NULLIF($10,''), country),
		    zip_code   = COALESCE(NULLIF($11,''), zip_code),
		    notes      = COALESCE(NULLIF($12,''), notes),
		    updated_at = NOW()
		WHERE id=$1 AND tenant_id=$2
	`, c.ID, c.TenantID, c.Email, c.FirstName, c.LastName, c.Phone,
		c.Address, c.City, c.State, c.Country, c.ZipCode, c.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, tenantID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var orders int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE customer_id=$1 AND tenant_id=$2
	`, id, tenantID).Scan(&orders); err != nil {
		return err
	}
	if orders > 0 {
		return ErrHasOrders
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM customers WHERE id=$1 AND tenant_id=$2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) EmailExists(ctx context.Context, tenantID, email, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers WHERE tenant_id=$1 AND email=$2 AND id <> $3
	`, tenantID, email, excludeID).Scan(&n)
	return n > 0, err
}
