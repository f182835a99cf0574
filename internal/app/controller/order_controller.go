package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder places an order from an explicit item list
// POST /api/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
			Error:   apperrors.ValidationInvalidInput,
			Message: "Invalid order data",
			Details: err.Error(),
		})
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		if _, known := service.OrderErrorCode(err); !known && apperrors.ValidationCode(err) == "" {
			log.Error("Failed to place order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "Failed to place order")
			return
		}
		respondError(c, err, "order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
	})
}

// GetOrders lists the user's orders, newest first
// GET /api/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondError(c, err, "orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID
// GET /api/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		respondError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus (admin only)
// PUT /api/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status is required")
		return
	}

	if err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status); err != nil {
		respondError(c, err, "order")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   req.Status,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
	})
}
