// Package dashboard provides the tenant-scoped aggregate queries behind the
// admin overview and analytics endpoints. Pure reads, no invariants beyond
// tenant isolation.
package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Totals struct {
	TotalProducts  int             `json:"total_products"`
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	MonthlyOrders  int             `json:"monthly_orders"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	WeeklyOrders   int             `json:"weekly_orders"`
	WeeklyRevenue  decimal.Decimal `json:"weekly_revenue"`
}

type TopProduct struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type DailySale struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Repository interface {
	Totals(ctx context.Context, tenantID string, now time.Time) (*Totals, error)
	TopProducts(ctx context.Context, tenantID string, limit int) ([]TopProduct, error)
	DailySales(ctx context.Context, tenantID string, days int, now time.Time) ([]DailySale, error)
	StatusBreakdown(ctx context.Context, tenantID string) ([]StatusCount, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Totals(ctx context.Context, tenantID string, now time.Time) (*Totals, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfWeek := now.Add(-7 * 24 * time.Hour)

	var t Totals
	var total, monthly, weekly string
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products  WHERE tenant_id=$1),
			(SELECT COUNT(*) FROM customers WHERE tenant_id=$1),
			COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid'), 0)::text,
			COUNT(*) FILTER (WHERE created_at >= $2),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid' AND created_at >= $2), 0)::text,
			COUNT(*) FILTER (WHERE created_at >= $3),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status='paid' AND created_at >= $3), 0)::text
		FROM orders WHERE tenant_id=$1
	`, tenantID, startOfMonth, startOfWeek).Scan(
		&t.TotalProducts, &t.TotalCustomers, &t.TotalOrders, &total,
		&t.MonthlyOrders, &monthly, &t.WeeklyOrders, &weekly)
	if err != nil {
		return nil, err
	}
	if t.TotalRevenue, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if t.MonthlyRevenue, err = decimal.NewFromString(monthly); err != nil {
		return nil, err
	}
	if t.WeeklyRevenue, err = decimal.NewFromString(weekly); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) TopProducts(ctx context.Context, tenantID string, limit int) ([]TopProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, oi.product_name,
		       SUM(oi.quantity)::int, SUM(oi.total_price)::text
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.tenant_id=$1
		GROUP BY oi.product_id, oi.product_name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var tp TopProduct
		var revenue string
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.TotalSold, &revenue); err != nil {
			return nil, err
		}
		if tp.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *PGRepo) DailySales(ctx context.Context, tenantID string, days int, now time.Time) ([]DailySale, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if days <= 0 || days > 365 {
		days = 30
	}
	since := now.AddDate(0, 0, -days)

	rows, err := r.db.Query(ctx, `
		SELECT created_at::date::text, COUNT(*)::int, COALESCE(SUM(total_amount), 0)::text
		FROM orders
		WHERE tenant_id=$1 AND payment_status='paid' AND created_at >= $2
		GROUP BY created_at::date
		ORDER BY created_at::date ASC
	`, tenantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySale
	for rows.Next() {
		var d DailySale
		var revenue string
		if err := rows.Scan(&d.Date, &d.Orders, &revenue); err != nil {
			return nil, err
		}
		if d.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PGRepo) StatusBreakdown(ctx context.Context, tenantID string) ([]StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*)::int FROM orders WHERE tenant_id=$1 GROUP BY status
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
