package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
)

// listCategoriesHandler lists categories ordered by sort order.
//
// @Summary  List categories
// @Tags     categories
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /categories [get]
func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 50)

		items, total, err := repo.List(c.Request.Context(), t.ID, category.Query{
			Search: c.Query("search"),
			Limit:  limit,
			Offset: offset,
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

// getCategoryHandler returns a single category.
//
// @Summary  Get category
// @Tags     categories
// @Produce  json
// @Param    id path string true "category id"
// @Success  200 {object} category.Category
// @Failure  404 {object} product.HTTPError
// @Router   /categories/{id} [get]
func getCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		cat, err := repo.GetByID(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// createCategoryHandler creates a category with a unique slug per tenant.
//
// @Summary  Create category
// @Tags     categories
// @Accept   json
// @Produce  json
// @Param    body body category.CreateCategoryRequest true "category payload"
// @Success  201 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /categories [post]
func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req category.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		slug := req.Slug
		if slug == "" {
			slug = slugify(req.Name)
		}

		ctx := c.Request.Context()
		if taken, err := repo.SlugExists(ctx, t.ID, slug, ""); err != nil || taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug already exists"})
			return
		}

		cat := &category.Category{
			ID:          uuid.NewString(),
			TenantID:    t.ID,
			Name:        req.Name,
			Slug:        slug,
			Description: req.Description,
			Image:       req.Image,
			ParentID:    req.ParentID,
			SortOrder:   req.SortOrder,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if err := repo.Create(ctx, cat); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "category created successfully", "category": cat})
	}
}

// updateCategoryHandler partially updates a category.
//
// @Summary  Update category
// @Tags     categories
// @Accept   json
// @Produce  json
// @Param    id   path string                         true "category id"
// @Param    body body category.UpdateCategoryRequest true "fields to update"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /categories/{id} [put]
func updateCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		id := c.Param("id")
		var req category.UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		ctx := c.Request.Context()
		cur, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		if req.Slug != "" && req.Slug != cur.Slug {
			if taken, err := repo.SlugExists(ctx, t.ID, req.Slug, id); err != nil || taken {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slug already exists"})
				return
			}
		}

		cat := &category.Category{
			ID:          id,
			TenantID:    t.ID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			Image:       req.Image,
			ParentID:    req.ParentID,
		}
		if err := repo.Update(ctx, cat, req.SortOrder, req.IsActive); err != nil {
			if err == category.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
			return
		}
		updated, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category updated successfully", "category": updated})
	}
}

// deleteCategoryHandler removes a category.
//
// @Summary  Delete category
// @Tags     categories
// @Produce  json
// @Param    id path string true "category id"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /categories/{id} [delete]
func deleteCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		ok, err := repo.Delete(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted successfully"})
	}
}
