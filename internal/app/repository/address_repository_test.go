package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/db"
)

func setupAddressTest(t *testing.T) (*gorm.DB, AddressRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{Email: "addr@example.com", PasswordHash: "h", Name: "Addr", Phone: "3333333333"}
	require.NoError(t, testDB.Create(user).Error)

	return testDB, NewAddressRepository(testDB), user
}

func newAddress(userID uint, street string, isDefault bool) *model.Address {
	return &model.Address{
		UserID:    userID,
		Label:     model.AddressLabelHome,
		Street:    street,
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
		Latitude:  12.97,
		Longitude: 77.59,
		IsDefault: isDefault,
	}
}

func defaultsOf(t *testing.T, repo AddressRepository, userID uint) []uint {
	t.Helper()
	addresses, err := repo.FindByUserID(userID)
	require.NoError(t, err)
	var ids []uint
	for _, a := range addresses {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestAddressRepository_FirstAddressBecomesDefault(t *testing.T) {
	_, repo, user := setupAddressTest(t)

	first := newAddress(user.ID, "1 First St", false)
	require.NoError(t, repo.Create(first))

	assert.True(t, first.IsDefault)
	assert.Equal(t, []uint{first.ID}, defaultsOf(t, repo, user.ID))
}

func TestAddressRepository_CreateDefaultResetsOthers(t *testing.T) {
	_, repo, user := setupAddressTest(t)

	first := newAddress(user.ID, "1 First St", true)
	require.NoError(t, repo.Create(first))
	second := newAddress(user.ID, "2 Second St", false)
	require.NoError(t, repo.Create(second))
	assert.Equal(t, []uint{first.ID}, defaultsOf(t, repo, user.ID))

	third := newAddress(user.ID, "3 Third St", true)
	require.NoError(t, repo.Create(third))
	assert.Equal(t, []uint{third.ID}, defaultsOf(t, repo, user.ID))

	def, err := repo.FindDefault(user.ID)
	require.NoError(t, err)
	assert.Equal(t, third.ID, def.ID)
}

func TestAddressRepository_SetDefault(t *testing.T) {
	_, repo, user := setupAddressTest(t)

	first := newAddress(user.ID, "1 First St", true)
	second := newAddress(user.ID, "2 Second St", false)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	require.NoError(t, repo.SetDefault(user.ID, second.ID))
	assert.Equal(t, []uint{second.ID}, defaultsOf(t, repo, user.ID))

	err := repo.SetDefault(user.ID, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	// Failed attempt rolled back; the old default survives.
	assert.Equal(t, []uint{second.ID}, defaultsOf(t, repo, user.ID))
}

func TestAddressRepository_DeletePromotesNextDefault(t *testing.T) {
	_, repo, user := setupAddressTest(t)

	first := newAddress(user.ID, "1 First St", true)
	second := newAddress(user.ID, "2 Second St", true)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	require.NoError(t, repo.Delete(user.ID, second.ID))
	assert.Equal(t, []uint{first.ID}, defaultsOf(t, repo, user.ID))

	require.NoError(t, repo.Delete(user.ID, first.ID))
	_, err := repo.FindDefault(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddressRepository_ScopedToUser(t *testing.T) {
	testDB, repo, user := setupAddressTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "h", Name: "Other", Phone: "4444444444"}
	require.NoError(t, testDB.Create(other).Error)

	addr := newAddress(user.ID, "1 First St", true)
	require.NoError(t, repo.Create(addr))

	_, err := repo.FindByIDAndUser(addr.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(other.ID, addr.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByIDAndUser(addr.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 First St", found.Street)
}
