package service

import (
	"context"
	"errors"
	"sync"

	"github.com/dvfens/ags/internal/app/model"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/pkg/logger"
)

var ErrCheckoutInProgress = errors.New("checkout already in progress")

type CheckoutInput struct {
	AddressID     *uint               `json:"addressId"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

// CheckoutService turns the session cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string, userID uint, input CheckoutInput) (*model.Order, error)
}

type checkoutService struct {
	carts     CartService
	locations LocationService
	addresses AddressService
	orders    OrderService

	inFlight sync.Map // session id -> struct{}
}

func NewCheckoutService(carts CartService, locations LocationService, addresses AddressService, orders OrderService) CheckoutService {
	return &checkoutService{
		carts:     carts,
		locations: locations,
		addresses: addresses,
		orders:    orders,
	}
}

// Checkout places an order for the session cart at current catalog prices. A second
// call for the same session while one is running fails with ErrCheckoutInProgress.
// Once the order exists its lines are taken out of the cart; items added meanwhile stay.
func (s *checkoutService) Checkout(ctx context.Context, sessionID string, userID uint, input CheckoutInput) (*model.Order, error) {
	if _, busy := s.inFlight.LoadOrStore(sessionID, struct{}{}); busy {
		logger.Warn("Checkout already in progress", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		})
		return nil, ErrCheckoutInProgress
	}
	defer s.inFlight.Delete(sessionID)

	state, err := s.carts.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := state.Gift.Validate(); err != nil {
		return nil, err
	}

	addressID, err := s.resolveAddress(ctx, sessionID, userID, input.AddressID)
	if err != nil {
		return nil, err
	}

	view, err := s.carts.View(state)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemInput, 0, len(state.Items))
	for _, it := range state.Items {
		items = append(items, OrderItemInput{ProductID: it.ID, Quantity: it.Quantity})
	}
	total := view.Totals.Total

	order, err := s.orders.CreateOrder(ctx, userID, CreateOrderInput{
		Items:         items,
		AddressID:     addressID,
		PaymentMethod: input.PaymentMethod,
		Total:         &total,
		Submission:    state.Gift.Submission(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.RemoveOrdered(ctx, sessionID, state.Items); err != nil {
		// The order stands; a failed cart update is only logged.
		logger.Error("Failed to update cart after checkout", err, map[string]interface{}{
			"session_id": sessionID,
			"order_id":   order.ID,
		})
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"order_id":   order.ID,
	})
	return order, nil
}

// resolveAddress picks the delivery address: explicit id, then the session's
// delivery location, then the user's default, then their first address.
func (s *checkoutService) resolveAddress(ctx context.Context, sessionID string, userID uint, explicit *uint) (uint, error) {
	if explicit != nil {
		address, err := s.addresses.GetAddress(userID, *explicit)
		if err != nil {
			return 0, err
		}
		return address.ID, nil
	}

	loc, err := s.locations.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if loc.Delivery != nil && loc.Delivery.AddressID != nil {
		address, err := s.addresses.GetAddress(userID, *loc.Delivery.AddressID)
		if err == nil {
			return address.ID, nil
		}
		if !errors.Is(err, ErrAddressNotFound) {
			return 0, err
		}
	}

	address, err := s.addresses.GetDefaultAddress(userID)
	if err == nil {
		return address.ID, nil
	}
	if !errors.Is(err, ErrAddressNotFound) {
		return 0, err
	}

	addresses, err := s.addresses.GetUserAddresses(userID)
	if err != nil {
		return 0, err
	}
	if len(addresses) > 0 {
		return addresses[0].ID, nil
	}
	return 0, apperrors.NewValidation(apperrors.AddressRequired, "Please add a delivery address")
}
