package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/order"
)

// orderErrJSON maps service errors to HTTP responses. Validation failures keep
// their caller-facing message; anything unexpected is logged and masked.
func orderErrJSON(c *gin.Context, log *logrus.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, order.ErrInvalidCustomer),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, order.ErrInsufficientInventory),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, order.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// listOrdersHandler lists orders with status filters and pagination.
//
// @Summary  List orders
// @Tags     orders
// @Produce  json
// @Param    status        query string false "status filter"
// @Param    paymentStatus query string false "payment status filter"
// @Success  200 {object} map[string]any
// @Router   /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		page, limit, offset := pageParams(c, 20)

		items, total, err := svc.List(c.Request.Context(), t.ID, order.Query{
			Status:        c.Query("status"),
			PaymentStatus: c.Query("paymentStatus"),
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get orders"})
			return
		}
		if items == nil {
			items = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": items, "pagination": paginate(page, limit, total)})
	}
}

// getOrderHandler returns an order hydrated with items and customer.
//
// @Summary  Get order
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} product.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		o, err := svc.Get(c.Request.Context(), t.ID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// placeOrderHandler atomically creates an order, reserving inventory.
//
// @Summary  Place order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body order.PlaceRequest true "order payload"
// @Success  201 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /orders [post]
func placeOrderHandler(svc *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req order.PlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		o, err := svc.Place(c.Request.Context(), t.ID, req)
		if err != nil {
			orderErrJSON(c, log, err, "failed to create order")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": o})
	}
}

// updateOrderStatusHandler moves an order along its lifecycle.
//
// @Summary  Update order status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string                    true "order id"
// @Param    body body order.UpdateStatusRequest true "target status"
// @Success  200 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), t.ID, c.Param("id"), req.Status, req.TrackingNumber)
		if err != nil {
			orderErrJSON(c, log, err, "failed to update order status")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order status updated successfully", "order": o})
	}
}

// cancelOrderHandler cancels a pending or processing order, restoring inventory.
//
// @Summary  Cancel order
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} map[string]any
// @Failure  400 {object} product.HTTPError
// @Router   /orders/{id}/cancel [post]
func cancelOrderHandler(svc *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		if err := svc.Cancel(c.Request.Context(), t.ID, c.Param("id")); err != nil {
			orderErrJSON(c, log, err, "failed to cancel order")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled successfully"})
	}
}

// orderStatsHandler returns order counts and paid revenue sums.
//
// @Summary  Order statistics
// @Tags     orders
// @Produce  json
// @Success  200 {object} order.Stats
// @Router   /orders/stats [get]
func orderStatsHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := auth.CurrentTenant(c)
		st, err := svc.Stats(c.Request.Context(), t.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order stats"})
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
