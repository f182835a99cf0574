package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/app/model"
	apperrors "github.com/dvfens/ags/internal/errors"
)

func TestCatalogService_ListProducts(t *testing.T) {
	s := setupStorefront(t)

	page, err := s.catalog.ListProducts(ProductListOptions{Sort: "price", SortAscending: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total, "unavailable products are hidden from the storefront")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Mug", page.Products[0].Name)
	assert.Equal(t, "Red Roses", page.Products[1].Name)

	page, err = s.catalog.ListProducts(ProductListOptions{IncludeUnavailable: true, PageSize: 1, Page: 2, Sort: "name", SortAscending: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Old Candle", page.Products[0].Name)

	page, err = s.catalog.ListProducts(ProductListOptions{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
}

func TestCatalogService_GetProduct(t *testing.T) {
	s := setupStorefront(t)

	product, err := s.catalog.GetProduct(s.roses.ID)
	require.NoError(t, err)
	assert.True(t, product.Price.Equal(dec("100")))

	_, err = s.catalog.GetProduct(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	s := setupStorefront(t)

	require.NoError(t, s.catalog.CreateCategory(&model.Category{Name: "Flowers", Slug: " Flowers "}))

	product, err := s.catalog.CreateProduct(CreateProductInput{
		Name:         "Tulips",
		Price:        dec("149.999"),
		CategorySlug: "flowers",
		Tags:         []string{"spring"},
		IsAvailable:  boolPtr(false),
	})
	require.NoError(t, err)
	require.NotNil(t, product.CategoryID)
	assert.True(t, product.Price.Equal(dec("150")))

	stored, err := s.catalog.GetProduct(product.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
	require.NotNil(t, stored.Category)
	assert.Equal(t, "flowers", stored.Category.Slug)

	_, err = s.catalog.CreateProduct(CreateProductInput{Name: "Ghost", Price: dec("1"), CategorySlug: "missing"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = s.catalog.CreateProduct(CreateProductInput{Name: " ", Price: dec("1")})
	assert.Equal(t, apperrors.ValidationRequired, apperrors.ValidationCode(err))

	_, err = s.catalog.CreateProduct(CreateProductInput{Name: "Negative", Price: dec("-1")})
	assert.Equal(t, apperrors.ValidationInvalidRange, apperrors.ValidationCode(err))
}

func TestCatalogService_GiftCatalog(t *testing.T) {
	s := setupStorefront(t)

	wraps, err := s.catalog.ListGiftWraps()
	require.NoError(t, err)
	require.Len(t, wraps, 3)
	assert.Equal(t, "Eco Kraft", wraps[0].Name, "wraps are listed cheapest first")

	occasions, err := s.catalog.ListOccasions()
	require.NoError(t, err)
	require.Len(t, occasions, 5)
	assert.Equal(t, "Birthday", occasions[0].Name)
	assert.Equal(t, "🎂", occasions[0].Emoji)

	_, err = s.catalog.GetGiftWrap(9999)
	assert.ErrorIs(t, err, ErrGiftWrapNotFound)
	_, err = s.catalog.GetOccasion(9999)
	assert.ErrorIs(t, err, ErrOccasionNotFound)

	wrap := &model.GiftWrap{Name: "Velvet Pouch", Price: dec("45.5")}
	require.NoError(t, s.catalog.CreateGiftWrap(wrap))
	found, err := s.catalog.GetGiftWrap(wrap.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(dec("45.50")))

	err = s.catalog.CreateGiftWrap(&model.GiftWrap{Name: "Bad", Price: dec("-5")})
	assert.Equal(t, apperrors.ValidationInvalidRange, apperrors.ValidationCode(err))

	occasion := &model.Occasion{Name: "Farewell", Emoji: "👋"}
	require.NoError(t, s.catalog.CreateOccasion(occasion))
	assert.NotZero(t, occasion.ID)
}
