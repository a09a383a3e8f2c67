package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrSKUTaken = errors.New("sku already exists")
)

type Query struct {
	Search     string
	CategoryID string
	Status     string
	ActiveOnly bool
	Featured   bool
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, tenantID string, q Query) ([]Product, int, error)
	GetByID(ctx context.Context, tenantID, id string) (*Product, error)
	GetBySlug(ctx context.Context, tenantID, slug string, activeOnly bool) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product, inventory *int, trackInventory, isFeatured *bool) error
	Delete(ctx context.Context, tenantID, id string) (bool, error)
	BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status string) error
	IncrementViewCount(ctx context.Context, tenantID, id string) error
	SKUExists(ctx context.Context, tenantID, sku, excludeID string) (bool, error)
	LowStock(ctx context.Context, tenantID string, threshold, limit int) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `id, tenant_id, category_id, name, slug, description, sku,
	price::text, compare_price::text, cost_price::text, images, inventory,
	track_inventory, tags, status, is_featured, sales_count, view_count,
	created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	var price string
	var compare, cost *string
	if err := row.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.Slug,
		&p.Description, &p.SKU, &price, &compare, &cost, &p.Images, &p.Inventory,
		&p.TrackInventory, &p.Tags, &p.Status, &p.IsFeatured, &p.SalesCount,
		&p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = d
	if compare != nil {
		if d, err := decimal.NewFromString(*compare); err == nil {
			p.ComparePrice = &d
		}
	}
	if cost != nil {
		if d, err := decimal.NewFromString(*cost); err == nil {
			p.CostPrice = &d
		}
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, tenantID string, q Query) ([]Product, int, error) {
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

	filter := `
		WHERE tenant_id=$1
		  AND ($2 = '' OR name ILIKE '%'||$2||'%' OR sku ILIKE '%'||$2||'%' OR description ILIKE '%'||$2||'%')
		  AND ($3 = '' OR category_id::text = $3)
		  AND ($4 = '' OR status = $4)
		  AND (NOT $5 OR status = 'active')
		  AND (NOT $6 OR is_featured)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+filter,
		tenantID, search, q.CategoryID, q.Status, q.ActiveOnly, q.Featured).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products`+filter+`
		ORDER BY is_featured DESC, created_at DESC
		LIMIT $7 OFFSET $8
	`, tenantID, search, q.CategoryID, q.Status, q.ActiveOnly, q.Featured, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, tenantID, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE id=$1 AND tenant_id=$2
	`, id, tenantID))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) GetBySlug(ctx context.Context, tenantID, slug string, activeOnly bool) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products
		WHERE slug=$1 AND tenant_id=$2 AND (NOT $3 OR status='active')
	`, slug, tenantID, activeOnly))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var compare, cost *string
	if p.ComparePrice != nil {
		s := p.ComparePrice.String()
		compare = &s
	}
	if p.CostPrice != nil {
		s := p.CostPrice.String()
		cost = &s
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, tenant_id, category_id, name, slug, description,
			sku, price, compare_price, cost_price, images, inventory, track_inventory,
			tags, status, is_featured, sales_count, view_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,0,0,NOW(),NOW())
	`, p.ID, p.TenantID, p.CategoryID, p.Name, p.Slug, p.Description, p.SKU,
		p.Price.String(), compare, cost, p.Images, p.Inventory, p.TrackInventory,
		p.Tags, p.Status, p.IsFeatured)
	if err != nil {
		// UNIQUE on (sku, tenant_id) and (slug, tenant_id)
		return ErrSKUTaken
	}
	return nil
}

func (r *PGRepo) Update(ctx context.Context, p *Product, inventory *int, trackInventory, isFeatured *bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var price *string
	if !p.Price.IsZero() {
		s := p.Price.String()
		price = &s
	}
	var compare, cost *string
	if p.ComparePrice != nil {
		s := p.ComparePrice.String()
		compare = &s
	}
	if p.CostPrice != nil {
		s := p.CostPrice.String()
		cost = &s
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name            = COALESCE(NULLIF($3,''), name),
		    slug            = COALESCE(NULLIF($4,''), slug),
		    description     = COALESCE(NULLIF($5,''), description),
		    sku             = COALESCE(NULLIF($6,''), sku),
		    price           = COALESCE($7::numeric, price),
		    compare_price   = COALESCE($8::numeric, compare_price),
		    cost_price      = COALESCE($9::numeric, cost_price),
		    category_id     = COALESCE(NULLIF($10,'')::uuid, category_id),
		    images          = COALESCE($11, images),
		    inventory       = COALESCE($12, inventory),
		    track_inventory = COALESCE($13, track_inventory),
		    tags            = COALESCE($14, tags),
		    status          = COALESCE(NULLIF($15,''), status),
		    is_featured     = COALESCE($16, is_featured),
		    updated_at      = NOW()
		WHERE id=$1 AND tenant_id=$2
	`, p.ID, p.TenantID, p.Name, p.Slug, p.Description, p.SKU, price, compare, cost,
		p.CategoryID, p.Images, inventory, trackInventory, p.Tags, p.Status, isFeatured)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE products SET status=$3, updated_at=NOW()
		WHERE tenant_id=$1 AND id = ANY($2)
	`, tenantID, ids, status)
	return err
}

func (r *PGRepo) IncrementViewCount(ctx context.Context, tenantID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE products SET view_count = view_count + 1 WHERE id=$1 AND tenant_id=$2
	`, id, tenantID)
	return err
}

func (r *PGRepo) SKUExists(ctx context.Context, tenantID, sku, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products WHERE tenant_id=$1 AND sku=$2 AND id <> $3
	`, tenantID, sku, excludeID).Scan(&n)
	return n > 0, err
}

func (r *PGRepo) LowStock(ctx context.Context, tenantID string, threshold, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE tenant_id=$1 AND track_inventory AND inventory <= $2
		ORDER BY inventory ASC LIMIT $3
	`, tenantID, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
