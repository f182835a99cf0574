package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/app/model"
	apperrors "github.com/dvfens/ags/internal/errors"
)

var cashCheckout = map[string]interface{}{"paymentMethod": "CASH"}

func (a *testAPI) createRecipient(t *testing.T, token, name string) uint {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/recipients", CreateRecipientRequest{Name: name, Phone: "9876543210"}, withToken(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["recipient"].(map[string]interface{})["id"].(float64))
}

func (a *testAPI) addToCart(t *testing.T, sid string, productID uint, quantity int) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: productID, Quantity: quantity}, inSession(sid))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCheckoutController_RequiresLogin(t *testing.T) {
	a := setupAPI(t)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w := a.do(t, http.MethodPost, "/api/checkout", cashCheckout, inSession(sessionOne))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/auth", decode(t, w)["redirect"])
}

func TestCheckoutController_EmptyCart(t *testing.T) {
	a := setupAPI(t)
	a.createAddress(t, a.userToken, "221 MG Road", true)

	w := a.do(t, http.MethodPost, "/api/checkout", cashCheckout, inSession(sessionOne), withToken(a.userToken))
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperrors.CartEmpty, body["error"])
	assert.Equal(t, "/", body["redirect"])
}

func TestCheckoutController_GiftWithoutRecipient(t *testing.T) {
	a := setupAPI(t)
	a.createAddress(t, a.userToken, "221 MG Road", true)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w := a.do(t, http.MethodPut, "/api/cart/gift", map[string]interface{}{"isGift": true}, inSession(sessionOne))
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodPost, "/api/checkout", cashCheckout, inSession(sessionOne), withToken(a.userToken))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperrors.MissingRecipient, decode(t, w)["error"])

	var count int64
	require.NoError(t, a.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutController_NoAddress(t *testing.T) {
	a := setupAPI(t)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w := a.do(t, http.MethodPost, "/api/checkout", cashCheckout, inSession(sessionOne), withToken(a.userToken))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperrors.AddressRequired, decode(t, w)["error"])
}

func TestCheckoutController_InvalidPaymentMethod(t *testing.T) {
	a := setupAPI(t)
	a.createAddress(t, a.userToken, "221 MG Road", true)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w := a.do(t, http.MethodPost, "/api/checkout", map[string]string{"paymentMethod": "CHEQUE"}, inSession(sessionOne), withToken(a.userToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.InvalidPaymentMethod, decode(t, w)["error"])
}

func TestCheckoutController_GiftOrder(t *testing.T) {
	a := setupAPI(t)
	a.createAddress(t, a.userToken, "221 MG Road", true)
	recipientID := a.createRecipient(t, a.userToken, "Asha")
	eco := a.wrapNamed(t, "Eco Kraft")

	a.addToCart(t, sessionOne, a.mug.ID, 2)
	w := a.do(t, http.MethodPut, "/api/cart/gift", map[string]interface{}{
		"isGift":          true,
		"giftWrapId":      eco.ID,
		"recipientId":     recipientID,
		"greetingMessage": "Happy birthday!",
	}, inSession(sessionOne))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/checkout", map[string]string{"paymentMethod": "ONLINE"}, inSession(sessionOne), withToken(a.userToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, 164.95, order["total"])
	assert.Equal(t, 20.0, order["giftWrapPrice"])
	assert.Equal(t, true, order["isGift"])
	assert.Equal(t, float64(recipientID), order["recipientId"])
	assert.Equal(t, "Happy birthday!", order["greetingMessage"])
	assert.Equal(t, "pending", order["status"])
	assert.Len(t, order["items"], 1)

	w = a.do(t, http.MethodGet, "/api/cart", nil, inSession(sessionOne))
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)
	assert.Empty(t, cart["items"])
	assert.Equal(t, false, cart["gift"].(map[string]interface{})["isGift"])
}

func TestCheckoutController_UsesSessionDeliveryAddress(t *testing.T) {
	a := setupAPI(t)
	a.createAddress(t, a.userToken, "221 MG Road", true)
	other := a.createAddress(t, a.userToken, "12 Brigade Road", false)

	w := a.do(t, http.MethodPut, "/api/location/delivery-address", SelectAddressRequest{AddressID: other},
		inSession(sessionOne), withToken(a.userToken))
	require.Equal(t, http.StatusOK, w.Code)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w = a.do(t, http.MethodPost, "/api/checkout", cashCheckout, inSession(sessionOne), withToken(a.userToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, float64(other), order["addressId"])
	assert.Contains(t, order["shippingAddress"], "12 Brigade Road")
}

func TestCheckoutController_ForeignAddress(t *testing.T) {
	a := setupAPI(t)
	foreign := a.createAddress(t, a.adminToken, "1 Admin Street", true)
	a.addToCart(t, sessionOne, a.roses.ID, 1)

	w := a.do(t, http.MethodPost, "/api/checkout", map[string]interface{}{"paymentMethod": "CASH", "addressId": foreign},
		inSession(sessionOne), withToken(a.userToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.AddressNotFound, decode(t, w)["error"])

	w = a.do(t, http.MethodGet, "/api/cart", nil, inSession(sessionOne))
	assert.Len(t, decode(t, w)["items"], 1, "cart survives a failed checkout")
}
