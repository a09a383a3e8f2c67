package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("tenant not found")
	ErrAlreadyExist = errors.New("subdomain or email already exists")
)

type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const tenantCols = `id, name, domain, subdomain, email, phone, logo, status,
	subscription_plan, subscription_status, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (*Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Domain, &t.Subdomain, &t.Email, &t.Phone,
		&t.Logo, &t.Status, &t.SubscriptionPlan, &t.SubscriptionStatus,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *PGRepo) Create(ctx context.Context, t *Tenant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO tenants (id, name, domain, subdomain, email, phone, logo, status,
			subscription_plan, subscription_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
	`, t.ID, t.Name, t.Domain, t.Subdomain, t.Email, t.Phone, t.Logo, t.Status,
		t.SubscriptionPlan, t.SubscriptionStatus)
	if err != nil {
		// UNIQUE on subdomain / email
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanTenant(r.db.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants WHERE id=$1
	`, id))
}

func (r *PGRepo) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanTenant(r.db.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants WHERE subdomain=$1
	`, subdomain))
}

func (r *PGRepo) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanTenant(r.db.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants WHERE domain=$1
	`, domain))
}
