package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
)

// GiftController serves the gift catalog: wraps and occasions.
type GiftController struct {
	catalog service.CatalogService
}

func NewGiftController(catalog service.CatalogService) *GiftController {
	return &GiftController{
		catalog: catalog,
	}
}

type CreateGiftWrapRequest struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
	ImageURL string          `json:"image"`
}

type CreateOccasionRequest struct {
	Name  string `json:"name" binding:"required"`
	Emoji string `json:"emoji"`
}

// GetGiftWraps lists gift wraps, cheapest first
// GET /api/gift-wraps
func (ctrl *GiftController) GetGiftWraps(c *gin.Context) {
	wraps, err := ctrl.catalog.ListGiftWraps()
	if err != nil {
		respondError(c, err, "gift wraps")
		return
	}
	c.JSON(http.StatusOK, wraps)
}

// CreateGiftWrap (admin only)
// POST /api/gift-wraps
func (ctrl *GiftController) CreateGiftWrap(c *gin.Context) {
	var req CreateGiftWrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Gift wrap name and price are required")
		return
	}

	wrap := &model.GiftWrap{Name: req.Name, Price: req.Price, Type: req.Type, ImageURL: req.ImageURL}
	if err := ctrl.catalog.CreateGiftWrap(wrap); err != nil {
		respondError(c, err, "create gift wrap")
		return
	}
	c.JSON(http.StatusCreated, wrap)
}

// GetOccasions lists occasions
// GET /api/occasions
func (ctrl *GiftController) GetOccasions(c *gin.Context) {
	occasions, err := ctrl.catalog.ListOccasions()
	if err != nil {
		respondError(c, err, "occasions")
		return
	}
	c.JSON(http.StatusOK, occasions)
}

// CreateOccasion (admin only)
// POST /api/occasions
func (ctrl *GiftController) CreateOccasion(c *gin.Context) {
	var req CreateOccasionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Occasion name is required")
		return
	}

	occasion := &model.Occasion{Name: req.Name, Emoji: req.Emoji}
	if err := ctrl.catalog.CreateOccasion(occasion); err != nil {
		respondError(c, err, "create occasion")
		return
	}
	c.JSON(http.StatusCreated, occasion)
}
