package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
	"github.com/tiendahub/tienda/internal/product"
)

// publicProduct hides internal-only fields from storefront responses.
func publicProduct(p product.Product) product.Product {
	p.CostPrice = nil
	return p
}

// shopInfoHandler returns the resolved storefront's public profile.
//
// @Summary  Shop info
// @Tags     public
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /public/shop [get]
func shopInfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		c.JSON(http.StatusOK, gin.H{"shop": gin.H{
			"name":      t.Name,
			"domain":    t.Domain,
			"subdomain": t.Subdomain,
			"logo":      t.Logo,
			"phone":     t.Phone,
		}})
	}
}

// publicProductsHandler lists active products for the storefront.
//
// @Summary  Storefront products
// @Tags     public
// @Produce  json
// @Param    search     query string false "search"
// @Param    categoryId query string false "category filter"
// @Param    featured   query bool   false "featured only"
// @Success  200 {object} map[string]any
// @Router   /public/products [get]
func publicProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 20)

		items, total, err := repo.List(c.Request.Context(), t.ID, product.Query{
			Search:     c.Query("search"),
			CategoryID: c.Query("categoryId"),
			ActiveOnly: true,
			Featured:   c.Query("featured") == "true",
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get products"})
			return
		}
		out := make([]product.Product, 0, len(items))
		for _, p := range items {
			out = append(out, publicProduct(p))
		}
		c.JSON(http.StatusOK, gin.H{"products": out, "pagination": paginate(page, limit, total)})
	}
}

// publicProductHandler returns an active product by slug and bumps its views.
//
// @Summary  Storefront product by slug
// @Tags     public
// @Produce  json
// @Param    slug path string true "product slug"
// @Success  200 {object} product.Product
// @Failure  404 {object} product.HTTPError
// @Router   /public/products/{slug} [get]
func publicProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		p, err := repo.GetBySlug(c.Request.Context(), t.ID, c.Param("slug"), true)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		_ = repo.IncrementViewCount(c.Request.Context(), t.ID, p.ID)
		c.JSON(http.StatusOK, publicProduct(*p))
	}
}

// publicCategoriesHandler lists active categories for the storefront.
//
// @Summary  Storefront categories
// @Tags     public
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /public/categories [get]
func publicCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 50)

		items, total, err := repo.List(c.Request.Context(), t.ID, category.Query{
			ActiveOnly: true,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get categories"})
			return
		}
		if items == nil {
			items = []category.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": items, "pagination": paginate(page, limit, total)})
	}
}
