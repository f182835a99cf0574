package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/db"
)

func TestRecipientRepository(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	repo := NewRecipientRepository(testDB)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "h", Name: "Owner", Phone: "5555555555"}
	other := &model.User{Email: "other@example.com", PasswordHash: "h", Name: "Other", Phone: "6666666666"}
	require.NoError(t, testDB.Create(owner).Error)
	require.NoError(t, testDB.Create(other).Error)

	zoe := &model.Recipient{UserID: owner.ID, Name: "Zoe", Phone: "9000000001"}
	amy := &model.Recipient{UserID: owner.ID, Name: "Amy", Phone: "9000000002", Email: "amy@example.com"}
	require.NoError(t, repo.Create(zoe))
	require.NoError(t, repo.Create(amy))
	require.NoError(t, repo.Create(&model.Recipient{UserID: other.ID, Name: "Bob", Phone: "9000000003"}))

	list, err := repo.FindByUserID(owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amy", list[0].Name)
	assert.Equal(t, "Zoe", list[1].Name)

	found, err := repo.FindByIDAndUser(zoe.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "9000000001", found.Phone)

	_, err = repo.FindByIDAndUser(zoe.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
