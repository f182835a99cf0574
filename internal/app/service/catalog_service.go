package service

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/pkg/logger"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGiftWrapNotFound = errors.New("gift wrap not found")
	ErrOccasionNotFound = errors.New("occasion not found")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductListOptions struct {
	CategoryID         *uint
	CategorySlug       string
	Search             string
	Sort               string // price | name | created_at
	SortAscending      bool
	Page               int
	PageSize           int
	IncludeUnavailable bool
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type CreateProductInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   *uint           `json:"categoryId"`
	CategorySlug string          `json:"category"`
	ImageURL     string          `json:"image"`
	Tags         []string        `json:"tags"`
	IsAvailable  *bool           `json:"isAvailable"`
}

type CatalogService interface {
	ListProducts(opts ProductListOptions) (*ProductPage, error)
	GetProduct(id uint) (*model.Product, error)
	GetProductsByIDs(ids []uint) (map[uint]model.Product, error)
	CreateProduct(input CreateProductInput) (*model.Product, error)

	ListCategories(categoryType string) ([]model.Category, error)
	CreateCategory(category *model.Category) error

	ListGiftWraps() ([]model.GiftWrap, error)
	GetGiftWrap(id uint) (*model.GiftWrap, error)
	CreateGiftWrap(wrap *model.GiftWrap) error

	ListOccasions() ([]model.Occasion, error)
	GetOccasion(id uint) (*model.Occasion, error)
	CreateOccasion(occasion *model.Occasion) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	giftRepo     repository.GiftRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	giftRepo repository.GiftRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		giftRepo:     giftRepo,
	}
}

func (s *catalogService) ListProducts(opts ProductListOptions) (*ProductPage, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	filter := repository.ProductFilter{
		CategoryID:    opts.CategoryID,
		CategorySlug:  strings.TrimSpace(opts.CategorySlug),
		Search:        opts.Search,
		AvailableOnly: !opts.IncludeUnavailable,
		SortAscending: opts.SortAscending,
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	}
	switch opts.Sort {
	case "price":
		filter.SortBy = repository.ProductSortPrice
	case "name":
		filter.SortBy = repository.ProductSortName
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProductsByIDs(ids []uint) (map[uint]model.Product, error) {
	return s.productRepo.FindByIDs(ids)
}

func (s *catalogService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewFieldValidation(apperrors.ValidationRequired, "Product name is required",
			map[string]string{"name": "required"})
	}
	if input.Price.IsNegative() {
		return nil, apperrors.NewFieldValidation(apperrors.ValidationInvalidRange, "Price cannot be negative",
			map[string]string{"price": "must be >= 0"})
	}

	categoryID := input.CategoryID
	if categoryID == nil && input.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(input.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		categoryID = &category.ID
	}

	product := &model.Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		CategoryID:  categoryID,
		ImageURL:    input.ImageURL,
		Tags:        pq.StringArray(input.Tags),
		IsAvailable: true,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	// A false default-valued column is skipped on insert.
	if input.IsAvailable != nil && !*input.IsAvailable {
		product.IsAvailable = false
		if err := s.productRepo.Update(product); err != nil {
			return nil, err
		}
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *catalogService) ListCategories(categoryType string) ([]model.Category, error) {
	return s.categoryRepo.FindAll(categoryType)
}

func (s *catalogService) CreateCategory(category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	if category.Name == "" || category.Slug == "" {
		return apperrors.NewValidation(apperrors.ValidationRequired, "Category name and slug are required")
	}
	if category.Type == "" {
		category.Type = model.CategoryTypeProduct
	}
	return s.categoryRepo.Create(category)
}

func (s *catalogService) ListGiftWraps() ([]model.GiftWrap, error) {
	return s.giftRepo.ListGiftWraps()
}

func (s *catalogService) GetGiftWrap(id uint) (*model.GiftWrap, error) {
	wrap, err := s.giftRepo.FindGiftWrap(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftWrapNotFound
		}
		return nil, err
	}
	return wrap, nil
}

func (s *catalogService) CreateGiftWrap(wrap *model.GiftWrap) error {
	wrap.Name = strings.TrimSpace(wrap.Name)
	if wrap.Name == "" {
		return apperrors.NewValidation(apperrors.ValidationRequired, "Gift wrap name is required")
	}
	if wrap.Price.IsNegative() {
		return apperrors.NewValidation(apperrors.ValidationInvalidRange, "Price cannot be negative")
	}
	wrap.Price = wrap.Price.Round(2)
	return s.giftRepo.CreateGiftWrap(wrap)
}

func (s *catalogService) ListOccasions() ([]model.Occasion, error) {
	return s.giftRepo.ListOccasions()
}

func (s *catalogService) GetOccasion(id uint) (*model.Occasion, error) {
	occasion, err := s.giftRepo.FindOccasion(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOccasionNotFound
		}
		return nil, err
	}
	return occasion, nil
}

func (s *catalogService) CreateOccasion(occasion *model.Occasion) error {
	occasion.Name = strings.TrimSpace(occasion.Name)
	if occasion.Name == "" {
		return apperrors.NewValidation(apperrors.ValidationRequired, "Occasion name is required")
	}
	return s.giftRepo.CreateOccasion(occasion)
}
