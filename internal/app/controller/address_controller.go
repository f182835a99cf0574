package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

// GetAddresses lists the user's addresses, default first
// GET /api/addresses
func (ctrl *AddressController) GetAddresses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.GetUserAddresses(userID)
	if err != nil {
		respondError(c, err, "addresses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
	})
}

// CreateAddress saves an address
// POST /api/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input service.CreateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid address request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid address data")
		return
	}

	address, err := ctrl.addressService.CreateAddress(userID, input)
	if err != nil {
		respondError(c, err, "create address")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"address": address,
	})
}

// SetDefaultAddress
// PUT /api/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.SetDefaultAddress(userID, addressID); err != nil {
		respondError(c, err, "address")
		return
	}
	address, err := ctrl.addressService.GetAddress(userID, addressID)
	if err != nil {
		respondError(c, err, "address")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// DeleteAddress
// DELETE /api/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, addressID); err != nil {
		respondError(c, err, "delete address")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted",
	})
}
