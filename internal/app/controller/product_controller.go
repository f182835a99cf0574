package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
)

type ProductController struct {
	catalog service.CatalogService
}

func NewProductController(catalog service.CatalogService) *ProductController {
	return &ProductController{
		catalog: catalog,
	}
}

type CreateCategoryRequest struct {
	Name     string             `json:"name" binding:"required"`
	Slug     string             `json:"slug" binding:"required"`
	Type     model.CategoryType `json:"type"`
	ImageURL string             `json:"imageUrl"`
}

// GetProducts lists available products
// GET /api/products?category=&categoryId=&search=&sort=price|name|created_at&order=asc|desc&page=&pageSize=
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		CategorySlug:  c.Query("category"),
		Search:        c.Query("search"),
		Sort:          c.Query("sort"),
		SortAscending: c.Query("order") == "asc",
	}
	if v := c.Query("categoryId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category ID")
			return
		}
		categoryID := uint(id)
		opts.CategoryID = &categoryID
	}
	opts.Page, _ = strconv.Atoi(c.Query("page"))
	opts.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	page, err := ctrl.catalog.ListProducts(opts)
	if err != nil {
		respondError(c, err, "products")
		return
	}

	log.Debug("Products fetched", map[string]interface{}{
		"count": len(page.Products),
		"total": page.Total,
	})

	c.JSON(http.StatusOK, gin.H{
		"products": page.Products,
		"count":    len(page.Products),
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// GetProductByID returns a single product
// GET /api/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalog.GetProduct(id)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog product (admin only)
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.catalog.CreateProduct(input)
	if err != nil {
		respondError(c, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// GetCategories lists categories, optionally of one type
// GET /api/categories?type=
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.catalog.ListCategories(c.Query("type"))
	if err != nil {
		respondError(c, err, "categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category (admin only)
// POST /api/categories
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Category name and slug are required")
		return
	}

	category := &model.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		Type:     req.Type,
		ImageURL: req.ImageURL,
	}
	if err := ctrl.catalog.CreateCategory(category); err != nil {
		respondError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"category": category,
	})
}
