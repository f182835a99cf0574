package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/gift"
	"github.com/dvfens/ags/pkg/logger"
	"github.com/dvfens/ags/pkg/mailer"
	"github.com/dvfens/ags/pkg/pricing"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrProductUnavailable   = errors.New("product is not available")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrOrderTotalMismatch   = errors.New("order total does not match")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
)

// TotalTolerance is the largest accepted difference between a client total and the server price.
var TotalTolerance = decimal.RequireFromString("0.01")

type OrderItemInput struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput is the order request. Gift fields are inlined from gift.Submission.
// Total is what the client displayed; it is checked, never trusted.
type CreateOrderInput struct {
	Items         []OrderItemInput    `json:"items"`
	AddressID     uint                `json:"addressId"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Total         *decimal.Decimal    `json:"total,omitempty"`
	gift.Submission
}

// Mailer sends transactional email. *mailer.Mailer satisfies it.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) error
	UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error
	ExpirePendingOrders(ttl time.Duration) (int64, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	addressRepo   repository.AddressRepository
	recipientRepo repository.RecipientRepository
	giftRepo      repository.GiftRepository
	userRepo      repository.UserRepository
	engine        *pricing.Engine
	mailer        Mailer
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	recipientRepo repository.RecipientRepository,
	giftRepo repository.GiftRepository,
	userRepo repository.UserRepository,
	engine *pricing.Engine,
	m Mailer,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		addressRepo:   addressRepo,
		recipientRepo: recipientRepo,
		giftRepo:      giftRepo,
		userRepo:      userRepo,
		engine:        engine,
		mailer:        m,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":        userID,
		"item_count":     len(input.Items),
		"payment_method": input.PaymentMethod,
		"is_gift":        input.IsGift,
	})

	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	opts := gift.Options{
		IsGift:          input.IsGift,
		GiftWrapID:      input.GiftWrapID,
		OccasionID:      input.OccasionID,
		RecipientID:     input.RecipientID,
		GreetingMessage: input.GreetingMessage,
		SenderName:      input.SenderName,
		ShowSenderName:  input.ShowSenderName,
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sub := opts.Submission()

	address, err := s.addressRepo.FindByIDAndUser(input.AddressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order address not found", map[string]interface{}{
				"user_id":    userID,
				"address_id": input.AddressID,
			})
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	items, lines, err := s.priceItems(input.Items)
	if err != nil {
		return nil, err
	}

	var recipient *model.Recipient
	wrapPrice := decimal.Zero
	if sub.IsGift {
		recipient, err = s.recipientRepo.FindByIDAndUser(*sub.RecipientID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRecipientNotFound
			}
			return nil, err
		}
		if sub.GiftWrapID != nil {
			wrap, err := s.giftRepo.FindGiftWrap(*sub.GiftWrapID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrGiftWrapNotFound
				}
				return nil, err
			}
			wrapPrice = wrap.Price
		}
		if sub.OccasionID != nil {
			if _, err := s.giftRepo.FindOccasion(*sub.OccasionID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrOccasionNotFound
				}
				return nil, err
			}
		}
	}

	if err := pricing.Validate(lines, wrapPrice); err != nil {
		return nil, ErrInvalidQuantity
	}
	totals := s.engine.ComputeTotals(lines, wrapPrice)

	if input.Total != nil && !totals.Matches(*input.Total, TotalTolerance) {
		logger.Warn("Order total mismatch", map[string]interface{}{
			"user_id":      userID,
			"client_total": input.Total.String(),
			"server_total": totals.Total.String(),
		})
		return nil, ErrOrderTotalMismatch
	}

	order := &model.Order{
		UserID:          userID,
		AddressID:       address.ID,
		ShippingAddress: address.OneLine(),
		PaymentMethod:   input.PaymentMethod,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Subtotal:        totals.Subtotal,
		GiftWrapPrice:   totals.GiftWrapPrice,
		DeliveryFee:     totals.DeliveryFee,
		Tax:             totals.Tax,
		Total:           totals.Total,
		IsGift:          sub.IsGift,
		GiftWrapID:      sub.GiftWrapID,
		OccasionID:      sub.OccasionID,
		RecipientID:     sub.RecipientID,
		GreetingMessage: sub.GreetingMessage,
		SenderName:      sub.SenderName,
		ShowSenderName:  sub.ShowSenderName,
		OrderItems:      items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
			"total":   totals.Total.String(),
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"total":      totals.Total.String(),
		"item_count": len(items),
		"is_gift":    order.IsGift,
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.sendConfirmation(ctx, created, recipient)
	return created, nil
}

// priceItems snapshots catalog prices. Duplicate product ids are merged.
func (s *orderService) priceItems(inputs []OrderItemInput) ([]model.OrderItem, []pricing.Line, error) {
	quantities := make(map[uint]int, len(inputs))
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity < 1 {
			return nil, nil, ErrInvalidQuantity
		}
		if _, seen := quantities[in.ProductID]; !seen {
			ids = append(ids, in.ProductID)
		}
		quantities[in.ProductID] += in.Quantity
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.OrderItem, 0, len(ids))
	lines := make([]pricing.Line, 0, len(ids))
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			logger.Warn("Product not found during order creation", map[string]interface{}{
				"product_id": id,
			})
			return nil, nil, ErrProductNotFound
		}
		if !product.IsAvailable {
			return nil, nil, ErrProductUnavailable
		}
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantities[id],
			ImageURL:  product.ImageURL,
		})
		lines = append(lines, pricing.Line{Price: product.Price, Quantity: quantities[id]})
	}
	return items, lines, nil
}

// sendConfirmation is best effort. Failures are logged and never fail the order.
func (s *orderService) sendConfirmation(ctx context.Context, order *model.Order, recipient *model.Recipient) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}

	user, err := s.userRepo.FindByID(order.UserID)
	if err != nil {
		logger.Warn("Skipping order confirmation: user lookup failed", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return
	}

	conf := mailer.OrderConfirmation{
		OrderID:         order.ID,
		CustomerName:    user.Name,
		Email:           user.Email,
		Subtotal:        order.Subtotal.StringFixed(2),
		GiftWrapPrice:   order.GiftWrapPrice.StringFixed(2),
		DeliveryFee:     order.DeliveryFee.StringFixed(2),
		Tax:             order.Tax.StringFixed(2),
		Total:           order.Total.StringFixed(2),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		IsGift:          order.IsGift,
		GreetingMessage: order.GreetingMessage,
	}
	if recipient != nil {
		conf.RecipientName = recipient.Name
	}
	for _, item := range order.OrderItems {
		conf.Lines = append(conf.Lines, mailer.OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Amount:   item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
	}

	msg, err := conf.Message()
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("Failed to send order confirmation", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}
	logger.Info("Order confirmation sent", map[string]interface{}{
		"order_id": order.ID,
	})
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidOrderStatus
	}

	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id":   orderID,
			"new_status": status,
		})
		return err
	}
	return nil
}

func (s *orderService) UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error {
	if err := s.orderRepo.UpdatePaymentStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		logger.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id":   orderID,
			"new_status": status,
		})
		return err
	}

	logger.Info("Payment status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// ExpirePendingOrders cancels unpaid ONLINE orders older than ttl.
func (s *orderService) ExpirePendingOrders(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	n, err := s.orderRepo.ExpirePending(cutoff)
	if err != nil {
		logger.Error("Failed to expire pending orders", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, err
	}
	if n > 0 {
		logger.Info("Expired pending orders", map[string]interface{}{
			"count":  n,
			"cutoff": cutoff,
		})
	}
	return n, nil
}

// OrderErrorCode maps order service errors to response codes. ok is false for unexpected errors.
func OrderErrorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return apperrors.CartEmpty, true
	case errors.Is(err, ErrProductNotFound):
		return apperrors.ProductNotFound, true
	case errors.Is(err, ErrProductUnavailable):
		return apperrors.ProductUnavailable, true
	case errors.Is(err, ErrInvalidQuantity):
		return apperrors.ValidationInvalidRange, true
	case errors.Is(err, ErrOrderTotalMismatch):
		return apperrors.OrderTotalMismatch, true
	case errors.Is(err, ErrInvalidPaymentMethod):
		return apperrors.InvalidPaymentMethod, true
	case errors.Is(err, ErrInvalidOrderStatus):
		return apperrors.OrderInvalidStatus, true
	case errors.Is(err, ErrAddressNotFound):
		return apperrors.AddressNotFound, true
	case errors.Is(err, ErrRecipientNotFound):
		return apperrors.RecipientNotFound, true
	case errors.Is(err, ErrGiftWrapNotFound):
		return apperrors.GiftWrapNotFound, true
	case errors.Is(err, ErrOccasionNotFound):
		return apperrors.OccasionNotFound, true
	case errors.Is(err, ErrOrderNotFound):
		return apperrors.OrderNotFound, true
	}
	return "", false
}
