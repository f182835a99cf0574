package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvfens/ags/internal/errors"
)

func (a *testAPI) placeOrder(t *testing.T, token string, addressID uint) uint {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": a.roses.ID, "quantity": 2}},
		"addressId":     addressID,
		"paymentMethod": "CASH",
		"total":         210,
	}, withToken(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["order"].(map[string]interface{})["id"].(float64))
}

func TestOrderController_CreateAndRead(t *testing.T) {
	a := setupAPI(t)
	addressID := a.createAddress(t, a.userToken, "221 MG Road", true)

	// 200 is over the free delivery threshold: 200 + 10 tax
	orderID := a.placeOrder(t, a.userToken, addressID)

	w := a.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil, withToken(a.userToken))
	require.Equal(t, http.StatusOK, w.Code)
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, 210.0, order["total"])
	assert.Equal(t, 0.0, order["deliveryFee"])
	assert.Equal(t, "CASH", order["paymentMethod"])
	items := order["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Red Roses", item["name"])
	assert.Equal(t, "roses.jpg", item["image"])

	w = a.do(t, http.MethodGet, "/api/orders", nil, withToken(a.userToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["count"])

	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil, withToken(a.adminToken))
	assert.Equal(t, http.StatusNotFound, w.Code, "orders are scoped to their owner")
}

func TestOrderController_CreateErrors(t *testing.T) {
	a := setupAPI(t)
	addressID := a.createAddress(t, a.userToken, "221 MG Road", true)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "malformed body",
			body:   "{not json",
			status: http.StatusBadRequest,
			code:   apperrors.ValidationInvalidInput,
		},
		{
			name: "stale total",
			body: map[string]interface{}{
				"items":         []map[string]interface{}{{"productId": a.mug.ID, "quantity": 1}},
				"addressId":     addressID,
				"paymentMethod": "CASH",
				"total":         80,
			},
			status: http.StatusConflict,
			code:   apperrors.OrderTotalMismatch,
		},
		{
			name: "no items",
			body: map[string]interface{}{
				"items":         []map[string]interface{}{},
				"addressId":     addressID,
				"paymentMethod": "CASH",
			},
			status: http.StatusConflict,
			code:   apperrors.CartEmpty,
		},
		{
			name: "unknown product",
			body: map[string]interface{}{
				"items":         []map[string]interface{}{{"productId": 9999, "quantity": 1}},
				"addressId":     addressID,
				"paymentMethod": "ONLINE",
			},
			status: http.StatusNotFound,
			code:   apperrors.ProductNotFound,
		},
		{
			name: "zero quantity",
			body: map[string]interface{}{
				"items":         []map[string]interface{}{{"productId": a.mug.ID, "quantity": 0}},
				"addressId":     addressID,
				"paymentMethod": "ONLINE",
			},
			status: http.StatusBadRequest,
			code:   apperrors.ValidationInvalidRange,
		},
		{
			name: "gift without recipient",
			body: map[string]interface{}{
				"items":         []map[string]interface{}{{"productId": a.mug.ID, "quantity": 1}},
				"addressId":     addressID,
				"paymentMethod": "CASH",
				"isGift":        true,
			},
			status: http.StatusUnprocessableEntity,
			code:   apperrors.MissingRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/orders", tt.body, withToken(a.userToken))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode(t, w)["error"])
		})
	}
}

func TestOrderController_MalformedBodyHasDetails(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/orders", `{"items": "roses"}`, withToken(a.userToken))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["details"])
}

func TestOrderController_UpdateStatus(t *testing.T) {
	a := setupAPI(t)
	addressID := a.createAddress(t, a.userToken, "221 MG Road", true)
	orderID := a.placeOrder(t, a.userToken, addressID)
	path := fmt.Sprintf("/api/orders/%d/status", orderID)

	w := a.do(t, http.MethodPut, path, UpdateOrderStatusRequest{Status: "confirmed"}, withToken(a.userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPut, path, UpdateOrderStatusRequest{Status: "lost"}, withToken(a.adminToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.OrderInvalidStatus, decode(t, w)["error"])

	w = a.do(t, http.MethodPut, "/api/orders/9999/status", UpdateOrderStatusRequest{Status: "confirmed"}, withToken(a.adminToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPut, path, UpdateOrderStatusRequest{Status: "confirmed"}, withToken(a.adminToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil, withToken(a.userToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode(t, w)["order"].(map[string]interface{})["status"])
}
