package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
	"github.com/tiendahub/tienda/internal/config"
	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/dashboard"
	"github.com/tiendahub/tienda/internal/httpx"
	"github.com/tiendahub/tienda/internal/order"
	"github.com/tiendahub/tienda/internal/product"
	"github.com/tiendahub/tienda/internal/tenant"
	"github.com/tiendahub/tienda/internal/user"
)

type app struct {
	cfg        config.Config
	log        *logrus.Logger
	tokens     *auth.TokenManager
	tenants    tenant.Repository
	users      user.Repository
	customers  customer.Repository
	categories category.Repository
	products   product.Repository
	orders     *order.Service
	dash       dashboard.Repository
}

func newRouter(a *app) *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(a.log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// auth
	api.POST("/auth/register", registerHandler(a))
	api.POST("/auth/login", loginHandler(a))
	api.GET("/auth/me", auth.Authenticate(a.tokens, a.users, a.tenants), meHandler())

	// admin dashboard API
	admin := api.Group("", auth.Authenticate(a.tokens, a.users, a.tenants), auth.CheckTenantStatus())

	products := admin.Group("/products")
	products.GET("", listProductsHandler(a.products))
	products.GET("/:id", getProductHandler(a.products))
	products.Use(auth.RequireAdmin())
	products.POST("", createProductHandler(a.products, a.categories))
	products.PUT("/bulk-status", bulkStatusHandler(a.products))
	products.PUT("/:id", updateProductHandler(a.products, a.categories))
	products.DELETE("/:id", deleteProductHandler(a.products))

	categories := admin.Group("/categories")
	categories.GET("", listCategoriesHandler(a.categories))
	categories.GET("/:id", getCategoryHandler(a.categories))
	categories.Use(auth.RequireAdmin())
	categories.POST("", createCategoryHandler(a.categories))
	categories.PUT("/:id", updateCategoryHandler(a.categories))
	categories.DELETE("/:id", deleteCategoryHandler(a.categories))

	customers := admin.Group("/customers", auth.RequireAdmin())
	customers.GET("", listCustomersHandler(a.customers))
	customers.GET("/:id", getCustomerHandler(a.customers, a.orders))
	customers.POST("", createCustomerHandler(a.customers))
	customers.PUT("/:id", updateCustomerHandler(a.customers))
	customers.DELETE("/:id", deleteCustomerHandler(a.customers))

	orders := admin.Group("/orders")
	orders.GET("", listOrdersHandler(a.orders))
	orders.GET("/stats", orderStatsHandler(a.orders))
	orders.GET("/:id", getOrderHandler(a.orders))
	orders.POST("", placeOrderHandler(a.orders, a.log))
	orders.PUT("/:id/status", updateOrderStatusHandler(a.orders, a.log))
	orders.POST("/:id/cancel", cancelOrderHandler(a.orders, a.log))

	dash := admin.Group("/dashboard", auth.RequireAdmin())
	dash.GET("/overview", dashboardOverviewHandler(a.dash, a.products, a.orders))
	dash.GET("/analytics", dashboardAnalyticsHandler(a.dash))

	// public storefront API
	pub := api.Group("/public", auth.ResolveTenant(a.tenants))
	pub.GET("/shop", shopInfoHandler())
	pub.GET("/products", publicProductsHandler(a.products))
	pub.GET("/products/:slug", publicProductHandler(a.products))
	pub.GET("/categories", publicCategoriesHandler(a.categories))

	return r
}
