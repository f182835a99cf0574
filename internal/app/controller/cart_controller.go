package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/gift"
	"github.com/dvfens/ags/internal/middleware"
)

// CartController serves the session cart. Every response carries freshly computed totals.
type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"max=99"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"max=99"`
}

// GetCart
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	view, err := ctrl.cartService.GetCart(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart
// POST /api/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "productId is required and quantity must be at most 99")
		return
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateCartItem sets a quantity; zero removes the item
// PUT /api/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity must be at most 99")
		return
	}

	view, err := ctrl.cartService.UpdateItem(c.Request.Context(), sid, productID, req.Quantity)
	if err != nil {
		respondError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveFromCart
// DELETE /api/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), sid, productID)
	if err != nil {
		respondError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ClearCart
// DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.Clear(c.Request.Context(), sid); err != nil {
		respondError(c, err, "cart")
		return
	}
	view, err := ctrl.cartService.GetCart(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateGift changes the gift options
// PUT /api/cart/gift
func (ctrl *CartController) UpdateGift(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var update gift.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid gift options")
		return
	}

	view, err := ctrl.cartService.UpdateGift(c.Request.Context(), sid, update)
	if err != nil {
		respondError(c, err, "gift options")
		return
	}
	c.JSON(http.StatusOK, view)
}
