package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// Checkout places an order for the session cart
// POST /api/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var input service.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout data")
		return
	}

	order, err := ctrl.checkoutService.Checkout(c.Request.Context(), sid, userID, input)
	if err != nil {
		if _, known := service.OrderErrorCode(err); known || apperrors.ValidationCode(err) != "" || errors.Is(err, service.ErrCheckoutInProgress) {
			respondError(c, err, "order")
			return
		}
		log.Error("Checkout failed", err, map[string]interface{}{
			"user_id":    userID,
			"session_id": sid,
		})
		apperrors.InternalError(c, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
	})
}
