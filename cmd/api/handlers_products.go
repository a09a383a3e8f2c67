package main

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
	"github.com/tiendahub/tienda/internal/product"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(slugCleaner.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// listProductsHandler lists catalog products with pagination and filters.
//
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    page       query int    false "page"
// @Param    limit      query int    false "limit"
// @Param    search     query string false "search"
// @Param    categoryId query string false "category filter"
// @Param    status     query string false "status filter"
// @Success  200 {object} map[string]any
// @Router   /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 20)

		items, total, err := repo.List(c.Request.Context(), t.ID, product.Query{
			Search:     c.Query("search"),
			CategoryID: c.Query("categoryId"),
			Status:     c.Query("status"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get products"})
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": items, "pagination": paginate(page, limit, total)})
	}
}

// getProductHandler returns one product and bumps its view counter.
//
// @Summary  Get product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} product.Product
// @Failure  404 {object} product.HTTPError
// @Router   /products/{id} [get]
func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		p, err := repo.GetByID(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		_ = repo.IncrementViewCount(c.Request.Context(), t.ID, p.ID)
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler creates a product after SKU and category checks.
//
// @Summary  Create product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body product.CreateProductRequest true "product payload"
// @Success  201 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /products [post]
func createProductHandler(repo product.Repository, categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Name == "" || req.SKU == "" || req.Price == "" || req.CategoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, sku, price and category_id are required"})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}

		ctx := c.Request.Context()
		if taken, err := repo.SKUExists(ctx, t.ID, req.SKU, ""); err != nil || taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sku already exists"})
			return
		}
		if _, err := categories.GetByID(ctx, t.ID, req.CategoryID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}

		p := &product.Product{
			ID:             uuid.NewString(),
			TenantID:       t.ID,
			CategoryID:     req.CategoryID,
			Name:           req.Name,
			Slug:           req.Slug,
			Description:    req.Description,
			SKU:            req.SKU,
			Price:          price,
			Images:         req.Images,
			Inventory:      req.Inventory,
			TrackInventory: req.TrackInventory == nil || *req.TrackInventory,
			Tags:           req.Tags,
			Status:         req.Status,
			IsFeatured:     req.IsFeatured,
		}
		if p.Slug == "" {
			p.Slug = slugify(p.Name)
		}
		if p.Status == "" {
			p.Status = product.StatusDraft
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		if req.ComparePrice != "" {
			if d, err := decimal.NewFromString(req.ComparePrice); err == nil {
				p.ComparePrice = &d
			}
		}
		if req.CostPrice != "" {
			if d, err := decimal.NewFromString(req.CostPrice); err == nil {
				p.CostPrice = &d
			}
		}

		if err := repo.Create(ctx, p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sku already exists"})
			return
		}
		created, err := repo.GetByID(ctx, t.ID, p.ID)
		if err != nil {
			created = p
		}
		c.JSON(http.StatusCreated, gin.H{"message": "product created successfully", "product": created})
	}
}

// updateProductHandler partially updates a product.
//
// @Summary  Update product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path string                       true "product id"
// @Param    body body product.UpdateProductRequest true "fields to update"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /products/{id} [put]
func updateProductHandler(repo product.Repository, categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		id := c.Param("id")
		var req product.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		ctx := c.Request.Context()
		cur, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if req.SKU != "" && req.SKU != cur.SKU {
			if taken, err := repo.SKUExists(ctx, t.ID, req.SKU, id); err != nil || taken {
				c.JSON(http.StatusBadRequest, gin.H{"error": "sku already exists"})
				return
			}
		}
		if req.CategoryID != "" {
			if _, err := categories.GetByID(ctx, t.ID, req.CategoryID); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
				return
			}
		}

		p := &product.Product{
			ID:          id,
			TenantID:    t.ID,
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			SKU:         req.SKU,
			Images:      req.Images,
			Tags:        req.Tags,
			Status:      req.Status,
		}
		if req.Price != "" {
			d, err := decimal.NewFromString(req.Price)
			if err != nil || d.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			p.Price = d
		}
		if req.ComparePrice != "" {
			if d, err := decimal.NewFromString(req.ComparePrice); err == nil {
				p.ComparePrice = &d
			}
		}
		if req.CostPrice != "" {
			if d, err := decimal.NewFromString(req.CostPrice); err == nil {
				p.CostPrice = &d
			}
		}

		if err := repo.Update(ctx, p, req.Inventory, req.TrackInventory, req.IsFeatured); err != nil {
			if err == product.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}
		updated, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product updated successfully", "product": updated})
	}
}

// deleteProductHandler removes a product.
//
// @Summary  Delete product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /products/{id} [delete]
func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		ok, err := repo.Delete(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
	}
}

// bulkStatusHandler updates status on a set of products.
//
// @Summary  Bulk status update
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body product.BulkStatusRequest true "ids and target status"
// @Success  200 {object} map[string]any
// @Router   /products/bulk-status [put]
func bulkStatusHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req product.BulkStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.ProductIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_ids and status are required"})
			return
		}
		switch req.Status {
		case product.StatusDraft, product.StatusActive, product.StatusArchived:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		if err := repo.BulkUpdateStatus(c.Request.Context(), t.ID, req.ProductIDs, req.Status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "products updated successfully"})
	}
}
