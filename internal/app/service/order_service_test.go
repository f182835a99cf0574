package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/app/model"
	apperrors "github.com/dvfens/ags/internal/errors"
	"github.com/dvfens/ags/internal/gift"
)

func TestOrderService_CreateOrder_RepricesFromCatalog(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)

	order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: s.roses.ID, Quantity: 1},
			{ProductID: s.roses.ID, Quantity: 1},
		},
		AddressID:     address.ID,
		PaymentMethod: model.PaymentMethodCash,
	})
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1, "duplicate lines are merged")
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	assert.Equal(t, "Red Roses", order.OrderItems[0].Name)
	assert.True(t, order.Subtotal.Equal(dec("200")))
	assert.True(t, order.DeliveryFee.IsZero(), "200 is above the free delivery threshold")
	assert.True(t, order.Tax.Equal(dec("10")))
	assert.True(t, order.Total.Equal(dec("210")))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "12 MG Road, Bengaluru, Karnataka - 560001", order.ShippingAddress)
	assert.False(t, order.IsGift)
	assert.Nil(t, order.RecipientID)

	require.Len(t, s.mail.sent, 1)
	assert.Equal(t, "buyer@example.com", s.mail.sent[0].To)
	assert.Contains(t, s.mail.sent[0].Subject, "confirmed")
}

func TestOrderService_CreateOrder_Gift(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)
	recipient := s.addRecipient(t, s.user.ID)
	box := s.wrapNamed(t, "Premium Box")

	occasions, err := s.catalog.ListOccasions()
	require.NoError(t, err)

	total := dec("208")
	order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: s.roses.ID, Quantity: 1}},
		AddressID:     address.ID,
		PaymentMethod: model.PaymentMethodOnline,
		Total:         &total,
		Submission: gift.Submission{
			IsGift:          true,
			GiftWrapID:      uintPtr(box.ID),
			OccasionID:      uintPtr(occasions[0].ID),
			RecipientID:     uintPtr(recipient.ID),
			GreetingMessage: "Happy birthday!",
			SenderName:      "Ravi",
			ShowSenderName:  false,
		},
	})
	require.NoError(t, err)

	// 100 + 60 wrap = 160 is below the threshold: fee 40, tax 8.
	assert.True(t, order.GiftWrapPrice.Equal(dec("60")))
	assert.True(t, order.DeliveryFee.Equal(dec("40")))
	assert.True(t, order.Tax.Equal(dec("8")))
	assert.True(t, order.Total.Equal(dec("208")))

	assert.True(t, order.IsGift)
	require.NotNil(t, order.Recipient)
	assert.Equal(t, "Asha", order.Recipient.Name)
	require.NotNil(t, order.GiftWrap)
	assert.Equal(t, "Premium Box", order.GiftWrap.Name)
	require.NotNil(t, order.Occasion)
	assert.Equal(t, "Happy birthday!", order.GreetingMessage)
	assert.Equal(t, "Ravi", order.SenderName)
	assert.False(t, order.ShowSenderName)

	require.Len(t, s.mail.sent, 1)
	assert.Contains(t, s.mail.sent[0].HTML, "Asha")
}

func TestOrderService_CreateOrder_Rejections(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)
	recipient := s.addRecipient(t, s.user.ID)
	other := s.otherUser(t)
	otherAddress := s.addAddress(t, other.ID, "5 Elsewhere", true)
	otherRecipient := s.addRecipient(t, other.ID)

	roses := []OrderItemInput{{ProductID: s.roses.ID, Quantity: 1}}
	wrong := dec("150")

	tests := []struct {
		name    string
		input   CreateOrderInput
		wantErr error
		code    string
	}{
		{
			name:    "No items",
			input:   CreateOrderInput{AddressID: address.ID, PaymentMethod: model.PaymentMethodCash},
			wantErr: ErrEmptyCart,
		},
		{
			name:    "Unknown payment method",
			input:   CreateOrderInput{Items: roses, AddressID: address.ID, PaymentMethod: "CARD"},
			wantErr: ErrInvalidPaymentMethod,
		},
		{
			name:    "Address of another user",
			input:   CreateOrderInput{Items: roses, AddressID: otherAddress.ID, PaymentMethod: model.PaymentMethodCash},
			wantErr: ErrAddressNotFound,
		},
		{
			name:    "Unknown product",
			input:   CreateOrderInput{Items: []OrderItemInput{{ProductID: 9999, Quantity: 1}}, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash},
			wantErr: ErrProductNotFound,
		},
		{
			name:    "Unavailable product",
			input:   CreateOrderInput{Items: []OrderItemInput{{ProductID: s.retired.ID, Quantity: 1}}, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash},
			wantErr: ErrProductUnavailable,
		},
		{
			name:    "Zero quantity",
			input:   CreateOrderInput{Items: []OrderItemInput{{ProductID: s.roses.ID, Quantity: 0}}, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "Client total off by more than a cent",
			input:   CreateOrderInput{Items: roses, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash, Total: &wrong},
			wantErr: ErrOrderTotalMismatch,
		},
		{
			name: "Gift without recipient",
			input: CreateOrderInput{Items: roses, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash,
				Submission: gift.Submission{IsGift: true}},
			code: apperrors.MissingRecipient,
		},
		{
			name: "Recipient of another user",
			input: CreateOrderInput{Items: roses, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash,
				Submission: gift.Submission{IsGift: true, RecipientID: uintPtr(otherRecipient.ID)}},
			wantErr: ErrRecipientNotFound,
		},
		{
			name: "Unknown gift wrap",
			input: CreateOrderInput{Items: roses, AddressID: address.ID, PaymentMethod: model.PaymentMethodCash,
				Submission: gift.Submission{IsGift: true, RecipientID: uintPtr(recipient.ID), GiftWrapID: uintPtr(9999)}},
			wantErr: ErrGiftWrapNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.orders.CreateOrder(context.Background(), s.user.ID, tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.code != "" {
				assert.Equal(t, tt.code, apperrors.ValidationCode(err))
			}
		})
	}

	orders, err := s.orders.GetUserOrders(s.user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, s.mail.sent)
}

func TestOrderService_TotalWithinTolerance(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)

	// 49.50 + 40 fee + 2.48 tax = 91.98
	clientTotal := dec("91.99")
	order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: s.mug.ID, Quantity: 1}},
		AddressID:     address.ID,
		PaymentMethod: model.PaymentMethodCash,
		Total:         &clientTotal,
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("91.98")), "the server total is stored, not the client's")
}

func TestOrderService_MailFailureDoesNotFailOrder(t *testing.T) {
	s := setupStorefront(t)
	s.mail.err = errors.New("smtp down")
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)

	order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: s.roses.ID, Quantity: 1}},
		AddressID:     address.ID,
		PaymentMethod: model.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestOrderService_GetAndStatus(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)
	other := s.otherUser(t)

	order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: s.roses.ID, Quantity: 1}},
		AddressID:     address.ID,
		PaymentMethod: model.PaymentMethodCash,
	})
	require.NoError(t, err)

	found, err := s.orders.GetOrderByID(s.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = s.orders.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	require.NoError(t, s.orders.UpdateOrderStatus(order.ID, model.OrderStatusShipping))
	found, err = s.orders.GetOrderByID(s.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipping, found.Status)

	assert.ErrorIs(t, s.orders.UpdateOrderStatus(order.ID, "lost"), ErrInvalidOrderStatus)
	assert.ErrorIs(t, s.orders.UpdateOrderStatus(9999, model.OrderStatusDelivered), ErrOrderNotFound)
	assert.ErrorIs(t, s.orders.UpdatePaymentStatus(9999, model.PaymentStatusCompleted), ErrOrderNotFound)
}

func TestOrderService_ExpirePendingOrders(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "12 MG Road", true)

	place := func(method model.PaymentMethod) *model.Order {
		order, err := s.orders.CreateOrder(context.Background(), s.user.ID, CreateOrderInput{
			Items:         []OrderItemInput{{ProductID: s.roses.ID, Quantity: 1}},
			AddressID:     address.ID,
			PaymentMethod: method,
		})
		require.NoError(t, err)
		return order
	}
	online := place(model.PaymentMethodOnline)
	cash := place(model.PaymentMethodCash)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.db.Model(&model.Order{}).Where("id IN ?", []uint{online.ID, cash.ID}).
		Update("created_at", stale).Error)

	n, err := s.orders.ExpirePendingOrders(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := s.orders.GetOrderByID(s.user.ID, online.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, found.Status)
	assert.Equal(t, model.PaymentStatusFailed, found.PaymentStatus)

	found, err = s.orders.GetOrderByID(s.user.ID, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, found.Status)
}

func TestOrderErrorCode(t *testing.T) {
	code, ok := OrderErrorCode(ErrOrderTotalMismatch)
	assert.True(t, ok)
	assert.Equal(t, apperrors.OrderTotalMismatch, code)

	_, ok = OrderErrorCode(errors.New("boom"))
	assert.False(t, ok)
}
