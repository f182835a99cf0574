package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/addressflow"
	"github.com/dvfens/ags/internal/app/service"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/middleware"
	"github.com/dvfens/ags/pkg/geocode"
)

// LocationController drives the delivery address capture flow and the reverse-geocode proxy.
type LocationController struct {
	locationService service.LocationService
	geocoder        addressflow.ReverseGeocoder
}

func NewLocationController(locationService service.LocationService, geocoder addressflow.ReverseGeocoder) *LocationController {
	return &LocationController{
		locationService: locationService,
		geocoder:        geocoder,
	}
}

type PickLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type SelectAddressRequest struct {
	AddressID uint `json:"addressId" binding:"required"`
}

// ReverseGeocode resolves coordinates to address fields
// GET /api/location/reverse-geocode?lat=&lng=
func (ctrl *LocationController) ReverseGeocode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "lat and lng are required")
		return
	}

	res, err := ctrl.geocoder.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		switch {
		case errors.Is(err, geocode.ErrInvalidCoords):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Coordinates are out of range")
		case errors.Is(err, geocode.ErrNotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Geocoding is not configured")
		default:
			log.Error("Reverse geocode failed", err, map[string]interface{}{
				"lat": lat,
				"lng": lng,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Failed to reverse geocode")
		}
		return
	}
	if res == nil {
		res = &geocode.Result{}
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *LocationController) respond(c *gin.Context, state service.LocationState, err error) {
	if err != nil {
		respondError(c, err, "location")
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetLocation
// GET /api/location
func (ctrl *LocationController) GetLocation(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	state, err := ctrl.locationService.Get(c.Request.Context(), sid)
	ctrl.respond(c, state, err)
}

// Pick records a map point
// POST /api/location/pick
func (ctrl *LocationController) Pick(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var req PickLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.MissingCoordinates, "lat and lng are required")
		return
	}

	state, err := ctrl.locationService.Pick(c.Request.Context(), sid, addressflow.Coords{Lat: *req.Lat, Lng: *req.Lng})
	ctrl.respond(c, state, err)
}

// Proceed moves to the form step
// POST /api/location/proceed
func (ctrl *LocationController) Proceed(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	state, err := ctrl.locationService.Proceed(c.Request.Context(), sid)
	ctrl.respond(c, state, err)
}

// Back returns to the map step
// POST /api/location/back
func (ctrl *LocationController) Back(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	state, err := ctrl.locationService.Back(c.Request.Context(), sid)
	ctrl.respond(c, state, err)
}

// EditDraft
// PUT /api/location/draft
func (ctrl *LocationController) EditDraft(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var patch addressflow.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid address data")
		return
	}

	state, err := ctrl.locationService.Edit(c.Request.Context(), sid, patch)
	ctrl.respond(c, state, err)
}

// Submit completes the form. Signed-in users get it saved as their default address.
// POST /api/location/submit
func (ctrl *LocationController) Submit(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	state, err := ctrl.locationService.Submit(c.Request.Context(), sid, userID)
	ctrl.respond(c, state, err)
}

// SelectDeliveryAddress uses a saved address for this session
// PUT /api/location/delivery-address
func (ctrl *LocationController) SelectDeliveryAddress(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "addressId is required")
		return
	}

	state, err := ctrl.locationService.SelectAddress(c.Request.Context(), sid, userID, req.AddressID)
	ctrl.respond(c, state, err)
}
