package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/db"
)

func setupGiftTest(t *testing.T) GiftRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewGiftRepository(testDB)
}

func TestGiftRepository_GiftWraps(t *testing.T) {
	repo := setupGiftTest(t)

	premium := &model.GiftWrap{Name: "Premium Box", Price: decimal.NewFromInt(60), Type: "box"}
	kraft := &model.GiftWrap{Name: "Eco Kraft", Price: decimal.NewFromInt(20), Type: "eco"}
	require.NoError(t, repo.CreateGiftWrap(premium))
	require.NoError(t, repo.CreateGiftWrap(kraft))

	wraps, err := repo.ListGiftWraps()
	require.NoError(t, err)
	require.Len(t, wraps, 2)
	assert.Equal(t, "Eco Kraft", wraps[0].Name)

	found, err := repo.FindGiftWrap(premium.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(60)))

	_, err = repo.FindGiftWrap(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	dup := &model.GiftWrap{Name: "Premium Box", Price: decimal.NewFromInt(1)}
	assert.Error(t, repo.CreateGiftWrap(dup))
}

func TestGiftRepository_Occasions(t *testing.T) {
	repo := setupGiftTest(t)

	birthday := &model.Occasion{Name: "Birthday", Emoji: "🎂"}
	require.NoError(t, repo.CreateOccasion(birthday))
	require.NoError(t, repo.CreateOccasion(&model.Occasion{Name: "Anniversary", Emoji: "💍"}))

	occasions, err := repo.ListOccasions()
	require.NoError(t, err)
	require.Len(t, occasions, 2)
	assert.Equal(t, "Birthday", occasions[0].Name)

	found, err := repo.FindOccasion(birthday.ID)
	require.NoError(t, err)
	assert.Equal(t, "🎂", found.Emoji)

	_, err = repo.FindOccasion(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
