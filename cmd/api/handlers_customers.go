package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/customer"
	"github.com/tiendahub/tienda/internal/order"
)

// listCustomersHandler lists customers with optional search.
//
// @Summary  List customers
// @Tags     customers
// @Produce  json
// @Success  200 {object} map[string]any
// @Router   /customers [get]
func listCustomersHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 20)

		items, total, err := repo.List(c.Request.Context(), t.ID, customer.Query{
			Search: c.Query("search"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get customers"})
			return
		}
		if items == nil {
			items = []customer.Customer{}
		}
		c.JSON(http.StatusOK, gin.H{"customers": items, "pagination": paginate(page, limit, total)})
	}
}

// getCustomerHandler returns a customer with their recent orders.
//
// @Summary  Get customer
// @Tags     customers
// @Produce  json
// @Param    id path string true "customer id"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /customers/{id} [get]
func getCustomerHandler(repo customer.Repository, orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		cust, err := repo.GetByID(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		recent, _, err := orders.List(c.Request.Context(), t.ID, order.Query{CustomerID: cust.ID, Limit: 10})
		if err != nil || recent == nil {
			recent = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"customer": cust, "orders": recent})
	}
}

// createCustomerHandler creates a customer with a unique email per tenant.
//
// @Summary  Create customer
// @Tags     customers
// @Accept   json
// @Produce  json
// @Param    body body customer.CreateCustomerRequest true "customer payload"
// @Success  201 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /customers [post]
func createCustomerHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req customer.CreateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}

		ctx := c.Request.Context()
		if exists, err := repo.EmailExists(ctx, t.ID, req.Email, ""); err != nil || exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer email already exists"})
			return
		}

		cust := &customer.Customer{
			ID:        uuid.NewString(),
			TenantID:  t.ID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Address:   req.Address,
			City:      req.City,
			State:     req.State,
			Country:   req.Country,
			ZipCode:   req.ZipCode,
			Notes:     req.Notes,
			Status:    "active",
		}
		if err := repo.Create(ctx, cust); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer email already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "customer created successfully", "customer": cust})
	}
}

// updateCustomerHandler partially updates a customer.
//
// @Summary  Update customer
// @Tags     customers
// @Accept   json
// @Produce  json
// @Param    id   path string                         true "customer id"
// @Param    body body customer.UpdateCustomerRequest true "fields to update"
// @Success  200 {object} map[string]any
// @Failure  404 {object} product.HTTPError
// @Router   /customers/{id} [put]
func updateCustomerHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		id := c.Param("id")
		var req customer.UpdateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		ctx := c.Request.Context()
		cur, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		if req.Email != "" && req.Email != cur.Email {
			if exists, err := repo.EmailExists(ctx, t.ID, req.Email, id); err != nil || exists {
				c.JSON(http.StatusBadRequest, gin.H{"error": "email already exists"})
				return
			}
		}

		cust := &customer.Customer{
			ID:        id,
			TenantID:  t.ID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Address:   req.Address,
			City:      req.City,
			State:     req.State,
			Country:   req.Country,
			ZipCode:   req.ZipCode,
			Notes:     req.Notes,
		}
		if err := repo.Update(ctx, cust); err != nil {
			if err == customer.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update customer"})
			return
		}
		updated, err := repo.GetByID(ctx, t.ID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update customer"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "customer updated successfully", "customer": updated})
	}
}

// deleteCustomerHandler removes a customer without orders.
//
// @Summary  Delete customer
// @Tags     customers
// @Produce  json
// @Param    id path string true "customer id"
// @Success  200 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /customers/{id} [delete]
func deleteCustomerHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		err := repo.Delete(c.Request.Context(), t.ID, c.Param("id"))
		switch err {
		case nil:
			c.JSON(http.StatusOK, gin.H{"message": "customer deleted successfully"})
		case customer.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		case customer.ErrHasOrders:
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete customer with existing orders"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete customer"})
		}
	}
}
