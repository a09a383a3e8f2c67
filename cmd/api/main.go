package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
	"github.com/tiendahub/tienda/internal/config"
	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/dashboard"
	"github.com/tiendahub/tienda/internal/order"
	"github.com/tiendahub/tienda/internal/product"
	"github.com/tiendahub/tienda/internal/tenant"
	"github.com/tiendahub/tienda/internal/user"

	_ "github.com/tiendahub/tienda/docs"
)

// @title           Tienda API
// @version         1.0
// @description     Multi-tenant e-commerce platform: storefront, admin dashboard and REST API.
// @BasePath        /api
func main() {
	cfg := config.Load()

	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	customers := customer.NewPGRepo(pool)
	a := &app{
		cfg:        cfg,
		log:        log,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire),
		tenants:    tenant.NewPGRepo(pool),
		users:      user.NewPGRepo(pool),
		customers:  customers,
		categories: category.NewPGRepo(pool),
		products:   product.NewPGRepo(pool),
		orders:     order.NewService(order.NewPGStore(pool), customers, log),
		dash:       dashboard.NewPGRepo(pool),
	}

	r := newRouter(a)
	log.WithField("addr", cfg.HTTPAddr).Info("api listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
