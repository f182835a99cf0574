package repository

import (
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/pkg/logger"
)

type RecipientRepository interface {
	Create(recipient *model.Recipient) error
	FindByUserID(userID uint) ([]model.Recipient, error)
	FindByIDAndUser(id, userID uint) (*model.Recipient, error)
}

type recipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) Create(recipient *model.Recipient) error {
	logger.Debug("Creating recipient in database", map[string]interface{}{
		"user_id": recipient.UserID,
	})

	if err := r.db.Create(recipient).Error; err != nil {
		logger.Error("Failed to create recipient in database", err, map[string]interface{}{
			"user_id": recipient.UserID,
		})
		return err
	}
	return nil
}

func (r *recipientRepository) FindByUserID(userID uint) ([]model.Recipient, error) {
	var recipients []model.Recipient
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&recipients).Error
	if err != nil {
		logger.Error("Failed to find recipients by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return recipients, nil
}

func (r *recipientRepository) FindByIDAndUser(id, userID uint) (*model.Recipient, error) {
	var recipient model.Recipient
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&recipient).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}
