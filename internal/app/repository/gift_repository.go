package repository

import (
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/pkg/logger"
)

// GiftRepository serves the read-mostly gift catalog: wraps and occasions.
type GiftRepository interface {
	ListGiftWraps() ([]model.GiftWrap, error)
	FindGiftWrap(id uint) (*model.GiftWrap, error)
	CreateGiftWrap(wrap *model.GiftWrap) error
	ListOccasions() ([]model.Occasion, error)
	FindOccasion(id uint) (*model.Occasion, error)
	CreateOccasion(occasion *model.Occasion) error
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) ListGiftWraps() ([]model.GiftWrap, error) {
	var wraps []model.GiftWrap
	if err := r.db.Order("price ASC, id ASC").Find(&wraps).Error; err != nil {
		logger.Error("Failed to list gift wraps", err)
		return nil, err
	}
	return wraps, nil
}

func (r *giftRepository) FindGiftWrap(id uint) (*model.GiftWrap, error) {
	var wrap model.GiftWrap
	if err := r.db.First(&wrap, id).Error; err != nil {
		return nil, err
	}
	return &wrap, nil
}

func (r *giftRepository) CreateGiftWrap(wrap *model.GiftWrap) error {
	logger.Debug("Creating gift wrap in database", map[string]interface{}{
		"name": wrap.Name,
	})
	if err := r.db.Create(wrap).Error; err != nil {
		logger.Error("Failed to create gift wrap in database", err, map[string]interface{}{
			"name": wrap.Name,
		})
		return err
	}
	return nil
}

func (r *giftRepository) ListOccasions() ([]model.Occasion, error) {
	var occasions []model.Occasion
	if err := r.db.Order("id ASC").Find(&occasions).Error; err != nil {
		logger.Error("Failed to list occasions", err)
		return nil, err
	}
	return occasions, nil
}

func (r *giftRepository) FindOccasion(id uint) (*model.Occasion, error) {
	var occasion model.Occasion
	if err := r.db.First(&occasion, id).Error; err != nil {
		return nil, err
	}
	return &occasion, nil
}

func (r *giftRepository) CreateOccasion(occasion *model.Occasion) error {
	if err := r.db.Create(occasion).Error; err != nil {
		logger.Error("Failed to create occasion in database", err, map[string]interface{}{
			"name": occasion.Name,
		})
		return err
	}
	return nil
}
