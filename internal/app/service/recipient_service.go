package service

import (
	"errors"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/pkg/logger"
)

var ErrRecipientNotFound = errors.New("recipient not found")

type RecipientService interface {
	ListRecipients(userID uint) ([]model.Recipient, error)
	GetRecipient(userID, recipientID uint) (*model.Recipient, error)
	CreateRecipient(userID uint, name, phone, email string) (*model.Recipient, error)
}

type recipientService struct {
	recipientRepo repository.RecipientRepository
}

func NewRecipientService(recipientRepo repository.RecipientRepository) RecipientService {
	return &recipientService{recipientRepo: recipientRepo}
}

func (s *recipientService) ListRecipients(userID uint) ([]model.Recipient, error) {
	return s.recipientRepo.FindByUserID(userID)
}

func (s *recipientService) GetRecipient(userID, recipientID uint) (*model.Recipient, error) {
	recipient, err := s.recipientRepo.FindByIDAndUser(recipientID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return recipient, nil
}

func (s *recipientService) CreateRecipient(userID uint, name, phone, email string) (*model.Recipient, error) {
	fields := map[string]string{}
	name, phone, email = strings.TrimSpace(name), strings.TrimSpace(phone), strings.TrimSpace(email)
	if name == "" {
		fields["name"] = "required"
	}
	if phone == "" {
		fields["phone"] = "required"
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "invalid"
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidation(apperrors.ValidationInvalidInput, "Recipient needs a name and a phone number", fields)
	}

	recipient := &model.Recipient{UserID: userID, Name: name, Phone: phone, Email: email}
	if err := s.recipientRepo.Create(recipient); err != nil {
		return nil, err
	}

	logger.Info("Recipient saved", map[string]interface{}{
		"user_id":      userID,
		"recipient_id": recipient.ID,
	})
	return recipient, nil
}
