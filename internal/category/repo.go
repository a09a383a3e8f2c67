package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrSlugTaken = errors.New("slug already exists")
)

type Query struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, tenantID string, q Query) ([]Category, int, error)
	GetByID(ctx context.Context, tenantID, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category, sortOrder *int, isActive *bool) error
	Delete(ctx context.Context, tenantID, id string) (bool, error)
	SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const categoryCols = `id, tenant_id, name, slug, description, image, parent_id,
	sort_order, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Slug, &c.Description,
		&c.Image, &c.ParentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, tenantID string, q Query) ([]Category, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Search)

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM categories
		WHERE tenant_id=$1
		  AND ($2 = '' OR name ILIKE '%'||$2||'%')
		  AND (NOT $3 OR is_active)
	`, tenantID, search, q.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+categoryCols+` FROM categories
		WHERE tenant_id=$1
		  AND ($2 = '' OR name ILIKE '%'||$2||'%')
		  AND (NOT $3 OR is_active)
		ORDER BY sort_order ASC, name ASC
		LIMIT $4 OFFSET $5
	`, tenantID, search, q.ActiveOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, tenantID, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scanCategory(r.db.QueryRow(ctx, `
		SELECT `+categoryCols+` FROM categories WHERE id=$1 AND tenant_id=$2
	`, id, tenantID))
	if err != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, tenant_id, name, slug, description, image,
			parent_id, sort_order, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`, c.ID, c.TenantID, c.Name, c.Slug, c.Description, c.Image,
		c.ParentID, c.SortOrder, c.IsActive)
	if err != nil {
		// UNIQUE on (slug, tenant_id)
		return ErrSlugTaken
	}
	return nil
}

func (r *PGRepo) Update(ctx context.Context, c *Category, sortOrder *int, isActive *bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name        = COALESCE(NULLIF($3,''), name),
		    slug        = COALESCE(NULLIF($4,''), slug),
		    description = COALESCE(NULLIF($5,''), description),
		    image       = COALESCE(NULLIF($6,''), image),
		    parent_id   = COALESCE($7, parent_id),
		    sort_order  = COALESCE($8, sort_order),
		    is_active   = COALESCE($9, is_active),
		    updated_at  = NOW()
		WHERE id=$1 AND tenant_id=$2
	`, c.ID, c.TenantID, c.Name, c.Slug, c.Description, c.Image,
		c.ParentID, sortOrder, isActive)
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

	tag, err := r.db.Exec(ctx, `
		DELETE FROM categories WHERE id=$1 AND tenant_id=$2
	`, id, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM categories WHERE tenant_id=$1 AND slug=$2 AND id <> $3
	`, tenantID, slug, excludeID).Scan(&n)
	return n > 0, err
}
