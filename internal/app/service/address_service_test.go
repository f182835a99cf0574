package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/addressflow"
	"github.com/dvfens/ags/internal/app/model"
	apperrors "github.com/dvfens/ags/internal/errors"
)

func TestAddressService_CreateAndDefaults(t *testing.T) {
	s := setupStorefront(t)

	first := s.addAddress(t, s.user.ID, "1 First St", false)
	assert.True(t, first.IsDefault, "first address becomes the default")
	assert.Equal(t, model.AddressLabelHome, first.Label)

	second := s.addAddress(t, s.user.ID, "2 Second St", false)
	assert.False(t, second.IsDefault)

	require.NoError(t, s.addresses.SetDefaultAddress(s.user.ID, second.ID))
	def, err := s.addresses.GetDefaultAddress(s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	require.NoError(t, s.addresses.DeleteAddress(s.user.ID, second.ID))
	def, err = s.addresses.GetDefaultAddress(s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)
}

func TestAddressService_NotFound(t *testing.T) {
	s := setupStorefront(t)
	address := s.addAddress(t, s.user.ID, "1 First St", true)
	other := s.otherUser(t)

	_, err := s.addresses.GetAddress(other.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, s.addresses.DeleteAddress(other.ID, address.ID), ErrAddressNotFound)
	assert.ErrorIs(t, s.addresses.SetDefaultAddress(other.ID, address.ID), ErrAddressNotFound)

	_, err = s.addresses.GetDefaultAddress(other.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressService_Validation(t *testing.T) {
	s := setupStorefront(t)

	tests := []struct {
		name  string
		input CreateAddressInput
		code  string
	}{
		{
			name:  "Missing city and pincode",
			input: CreateAddressInput{Street: "1 First St", State: "Karnataka"},
			code:  apperrors.IncompleteAddress,
		},
		{
			name:  "Unknown label",
			input: CreateAddressInput{Label: "Cottage", Street: "1", City: "c", State: "s", Pincode: "1"},
			code:  apperrors.InvalidLabel,
		},
		{
			name:  "Latitude out of range",
			input: CreateAddressInput{Street: "1", City: "c", State: "s", Pincode: "1", Latitude: 91},
			code:  apperrors.ValidationInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.addresses.CreateAddress(s.user.ID, tt.input)
			assert.Equal(t, tt.code, apperrors.ValidationCode(err))
		})
	}

	addresses, err := s.addresses.GetUserAddresses(s.user.ID)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestAddressService_Persister(t *testing.T) {
	s := setupStorefront(t)
	s.addAddress(t, s.user.ID, "1 First St", true)

	id, err := s.addresses.Persister(s.user.ID).CreateAddress(context.Background(), addressflow.NewAddress{
		Label:     addressflow.LabelWork,
		Street:    "9 Office Park",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560103",
		IsDefault: true,
	})
	require.NoError(t, err)

	def, err := s.addresses.GetDefaultAddress(s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, id, def.ID)
	assert.Equal(t, model.AddressLabelWork, def.Label)
}
