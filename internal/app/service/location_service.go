package service

import (
	"context"

	"github.com/dvfens/ags/internal/addressflow"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/statestore"
	"github.com/dvfens/ags/pkg/logger"
)

// LocationState is the per-session address capture flow plus the chosen delivery location.
type LocationState struct {
	Flow     addressflow.Flow      `json:"flow"`
	Delivery *addressflow.Location `json:"delivery,omitempty"`
}

func NewLocationState() LocationState {
	return LocationState{Flow: addressflow.Start()}
}

// LocationService drives the address capture flow for a session. userID is zero for guests.
type LocationService interface {
	Get(ctx context.Context, sessionID string) (LocationState, error)
	Pick(ctx context.Context, sessionID string, coords addressflow.Coords) (LocationState, error)
	Proceed(ctx context.Context, sessionID string) (LocationState, error)
	Back(ctx context.Context, sessionID string) (LocationState, error)
	Edit(ctx context.Context, sessionID string, patch addressflow.DraftPatch) (LocationState, error)
	Submit(ctx context.Context, sessionID string, userID uint) (LocationState, error)
	SelectAddress(ctx context.Context, sessionID string, userID, addressID uint) (LocationState, error)
}

type locationService struct {
	store     statestore.Store[LocationState]
	geocoder  addressflow.ReverseGeocoder
	addresses AddressService
}

func NewLocationService(store statestore.Store[LocationState], geocoder addressflow.ReverseGeocoder, addresses AddressService) LocationService {
	return &locationService{
		store:     store,
		geocoder:  geocoder,
		addresses: addresses,
	}
}

func (s *locationService) Get(ctx context.Context, sessionID string) (LocationState, error) {
	return statestore.GetOr(ctx, s.store, sessionID, NewLocationState())
}

func (s *locationService) step(ctx context.Context, sessionID string, fn func(addressflow.Flow) (addressflow.Flow, error)) (LocationState, error) {
	return statestore.Update(ctx, s.store, sessionID, NewLocationState(), func(st LocationState) (LocationState, error) {
		next, err := fn(st.Flow)
		if err != nil {
			return st, err
		}
		st.Flow = next
		return st, nil
	})
}

func (s *locationService) Pick(ctx context.Context, sessionID string, coords addressflow.Coords) (LocationState, error) {
	return s.step(ctx, sessionID, func(f addressflow.Flow) (addressflow.Flow, error) {
		return f.Pick(ctx, s.geocoder, coords)
	})
}

func (s *locationService) Proceed(ctx context.Context, sessionID string) (LocationState, error) {
	return s.step(ctx, sessionID, addressflow.Flow.Proceed)
}

func (s *locationService) Back(ctx context.Context, sessionID string) (LocationState, error) {
	return s.step(ctx, sessionID, addressflow.Flow.Back)
}

func (s *locationService) Edit(ctx context.Context, sessionID string, patch addressflow.DraftPatch) (LocationState, error) {
	return s.step(ctx, sessionID, func(f addressflow.Flow) (addressflow.Flow, error) {
		return f.Edit(patch)
	})
}

// Submit completes the form step. Signed-in users get the address saved as their default;
// guests only keep it in the session. Either way the flow restarts on the map step.
func (s *locationService) Submit(ctx context.Context, sessionID string, userID uint) (LocationState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return state, err
	}

	completing, ok := state.Flow.Completing()
	if !ok {
		return state, apperrors.NewValidation(apperrors.InvalidFlowStep, "Cannot submit the address on the select step")
	}

	var persister addressflow.Persister
	if userID != 0 {
		persister = s.addresses.Persister(userID)
	}
	loc, err := completing.Submit(ctx, persister)
	if err != nil {
		return state, err
	}

	state.Delivery = &loc
	state.Flow = addressflow.Start()
	if err := s.store.Set(ctx, sessionID, state); err != nil {
		return state, err
	}

	logger.Info("Delivery location submitted", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"persisted":  loc.AddressID != nil,
	})
	return state, nil
}

// SelectAddress makes a saved address the session delivery location.
func (s *locationService) SelectAddress(ctx context.Context, sessionID string, userID, addressID uint) (LocationState, error) {
	address, err := s.addresses.GetAddress(userID, addressID)
	if err != nil {
		return LocationState{}, err
	}

	id := address.ID
	loc := addressflow.Location{
		AddressID: &id,
		Label:     string(address.Label),
		Street:    address.Street,
		Apartment: address.Apartment,
		Landmark:  address.Landmark,
		City:      address.City,
		State:     address.State,
		Pincode:   address.Pincode,
		Latitude:  address.Latitude,
		Longitude: address.Longitude,
		Address:   address.OneLine(),
	}
	return statestore.Update(ctx, s.store, sessionID, NewLocationState(), func(st LocationState) (LocationState, error) {
		st.Delivery = &loc
		return st, nil
	})
}
