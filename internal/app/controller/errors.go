package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
)

type serviceError struct {
	err     error
	status  int
	code    string
	message string
}

var serviceErrors = []serviceError{
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound, "Product not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Category not found"},
	{service.ErrGiftWrapNotFound, http.StatusNotFound, apperrors.GiftWrapNotFound, "Gift wrap not found"},
	{service.ErrOccasionNotFound, http.StatusNotFound, apperrors.OccasionNotFound, "Occasion not found"},
	{service.ErrAddressNotFound, http.StatusNotFound, apperrors.AddressNotFound, "Address not found"},
	{service.ErrRecipientNotFound, http.StatusNotFound, apperrors.RecipientNotFound, "Recipient not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found"},
	{service.ErrProductUnavailable, http.StatusConflict, apperrors.ProductUnavailable, "This product is no longer available"},
	{service.ErrOrderTotalMismatch, http.StatusConflict, apperrors.OrderTotalMismatch, "Prices have changed. Please review your order"},
	{service.ErrCheckoutInProgress, http.StatusConflict, apperrors.CheckoutInProgress, "Your order is already being placed"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidRange, "Quantity must be at least 1"},
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest, apperrors.InvalidPaymentMethod, "Payment method must be CASH or ONLINE"},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Unknown order status"},
}

// respondError writes the response for a service error. Validation errors become 422,
// known sentinels their mapped status, anything else a logged 500 worded for context.
func respondError(c *gin.Context, err error, context string) {
	if apperrors.ValidationCode(err) != "" {
		apperrors.RespondWithValidation(c, err, context)
		return
	}
	if errors.Is(err, service.ErrEmptyCart) {
		apperrors.RespondWithRedirect(c, http.StatusConflict, apperrors.CartEmpty, "Your cart is empty", "/")
		return
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			apperrors.RespondWithError(c, se.status, se.code, se.message)
			return
		}
	}

	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}

// requireUser returns the authenticated user id or writes a 401 that sends the storefront to /auth.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondWithRedirect(c, http.StatusUnauthorized, apperrors.AuthUnauthorized, "Login required", "/auth")
		return 0, false
	}
	return userID, true
}

// requireSession returns the guest session id set by middleware.Session.
func requireSession(c *gin.Context) (string, bool) {
	sid, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session unavailable")
		return "", false
	}
	return sid, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
