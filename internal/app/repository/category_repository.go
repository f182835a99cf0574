package repository

import (
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/pkg/logger"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll(categoryType string) ([]model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"slug": category.Slug,
		})
		return err
	}
	return nil
}

// FindAll lists categories, optionally restricted to one type.
func (r *categoryRepository) FindAll(categoryType string) ([]model.Category, error) {
	query := r.db.Order("name ASC")
	if categoryType != "" {
		query = query.Where("type = ?", categoryType)
	}

	var categories []model.Category
	if err := query.Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err, map[string]interface{}{
			"type": categoryType,
		})
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
