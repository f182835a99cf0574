package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/addressflow"
	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/pkg/logger"
)

var ErrAddressNotFound = errors.New("address not found")

type CreateAddressInput struct {
	Label     string  `json:"label"`
	Street    string  `json:"street"`
	Apartment string  `json:"apartment"`
	Landmark  string  `json:"landmark"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDefault bool    `json:"isDefault"`
}

func (in CreateAddressInput) validate() error {
	missing := map[string]string{}
	for name, v := range map[string]string{
		"street":  in.Street,
		"city":    in.City,
		"state":   in.State,
		"pincode": in.Pincode,
	} {
		if strings.TrimSpace(v) == "" {
			missing[name] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewFieldValidation(apperrors.IncompleteAddress,
			"Please fill in street, city, state and pincode", missing)
	}
	if in.Label != "" && !addressflow.ValidLabel(in.Label) {
		return apperrors.NewFieldValidation(apperrors.InvalidLabel,
			"Label must be Home, Work or Other", map[string]string{"label": "invalid"})
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return apperrors.NewValidation(apperrors.ValidationInvalidRange, "Coordinates are out of range")
	}
	return nil
}

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	GetAddress(userID, addressID uint) (*model.Address, error)
	GetDefaultAddress(userID uint) (*model.Address, error)
	CreateAddress(userID uint, input CreateAddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
	Persister(userID uint) addressflow.Persister
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("User addresses fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

// GetAddress returns ErrAddressNotFound for addresses of other users too.
func (s *addressService) GetAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByIDAndUser(addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

func (s *addressService) GetDefaultAddress(userID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindDefault(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

func (s *addressService) CreateAddress(userID uint, input CreateAddressInput) (*model.Address, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	label := model.AddressLabel(input.Label)
	if label == "" {
		label = model.AddressLabelHome
	}

	address := &model.Address{
		UserID:    userID,
		Label:     label,
		Street:    strings.TrimSpace(input.Street),
		Apartment: strings.TrimSpace(input.Apartment),
		Landmark:  strings.TrimSpace(input.Landmark),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		Pincode:   strings.TrimSpace(input.Pincode),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		IsDefault: input.IsDefault,
	}

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if err := s.addressRepo.Delete(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}

	logger.Info("Address deleted", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}

	logger.Info("Default address changed", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})
	return nil
}

// Persister saves addresses submitted through the capture flow for userID.
func (s *addressService) Persister(userID uint) addressflow.Persister {
	return addressflow.PersisterFunc(func(_ context.Context, a addressflow.NewAddress) (uint, error) {
		created, err := s.CreateAddress(userID, CreateAddressInput{
			Label:     a.Label,
			Street:    a.Street,
			Apartment: a.Apartment,
			Landmark:  a.Landmark,
			City:      a.City,
			State:     a.State,
			Pincode:   a.Pincode,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			IsDefault: a.IsDefault,
		})
		if err != nil {
			return 0, err
		}
		return created.ID, nil
	})
}
