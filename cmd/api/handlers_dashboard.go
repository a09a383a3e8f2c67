package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/dashboard"
	"github.com/tiendahub/tienda/internal/order"
	"github.com/tiendahub/tienda/internal/product"
)

const lowStockThreshold = 10

// dashboardOverviewHandler aggregates counts, revenue, low-stock products,
// top sellers and recent orders for the admin landing page.
//
// @Summary  Dashboard overview
// @Tags     dashboard
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /dashboard/overview [get]
func dashboardOverviewHandler(dash dashboard.Repository, products product.Repository, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		ctx := c.Request.Context()

		totals, err := dash.Totals(ctx, t.ID, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get dashboard overview"})
			return
		}
		lowStock, err := products.LowStock(ctx, t.ID, lowStockThreshold, 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get dashboard overview"})
			return
		}
		top, err := dash.TopProducts(ctx, t.ID, 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get dashboard overview"})
			return
		}
		recent, _, err := orders.List(ctx, t.ID, order.Query{Limit: 10})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get dashboard overview"})
			return
		}

		if lowStock == nil {
			lowStock = []product.Product{}
		}
		if top == nil {
			top = []dashboard.TopProduct{}
		}
		if recent == nil {
			recent = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{
			"overview":             totals,
			"low_stock_products":   lowStock,
			"top_selling_products": top,
			"recent_orders":        recent,
		})
	}
}

// dashboardAnalyticsHandler returns daily sales for the requested window and
// the order status breakdown.
//
// @Summary  Sales analytics
// @Tags     dashboard
// @Produce  json
// @Param    days query int false "window in days (default 30)"
// @Success  200 {object} map[string]any
// @Router   /dashboard/analytics [get]
func dashboardAnalyticsHandler(dash dashboard.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		ctx := c.Request.Context()

		days, _ := strconv.Atoi(c.Query("days"))
		sales, err := dash.DailySales(ctx, t.ID, days, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sales analytics"})
			return
		}
		breakdown, err := dash.StatusBreakdown(ctx, t.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sales analytics"})
			return
		}

		if sales == nil {
			sales = []dashboard.DailySale{}
		}
		if breakdown == nil {
			breakdown = []dashboard.StatusCount{}
		}
		c.JSON(http.StatusOK, gin.H{
			"daily_sales":            sales,
			"order_status_breakdown": breakdown,
		})
	}
}
