package db

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/pkg/logger"
)

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Address{},
		&model.Recipient{},
		&model.Category{},
		&model.Product{},
		&model.GiftWrap{},
		&model.Occasion{},
		&model.Order{},
		&model.OrderItem{},
		&model.SessionState{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedDefaults(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedDefaults inserts the default occasions and gift wraps when their tables are empty.
func SeedDefaults(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	if err := seedOccasions(db); err != nil {
		logger.Error("Failed to seed occasions", err)
		return err
	}
	if err := seedGiftWraps(db); err != nil {
		logger.Error("Failed to seed gift wraps", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedOccasions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Occasion{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Occasions already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	occasions := []model.Occasion{
		{Name: "Birthday", Emoji: "🎂"},
		{Name: "Anniversary", Emoji: "💍"},
		{Name: "Thank You", Emoji: "🙏"},
		{Name: "Congratulations", Emoji: "🎉"},
		{Name: "Get Well", Emoji: "💐"},
	}
	if err := db.Create(&occasions).Error; err != nil {
		return err
	}

	logger.Info("Occasions seeded successfully", map[string]interface{}{
		"total_occasions": len(occasions),
	})
	return nil
}

func seedGiftWraps(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.GiftWrap{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Gift wraps already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	wraps := []model.GiftWrap{
		{Name: "Classic Paper", Price: decimal.NewFromInt(30), Type: "paper"},
		{Name: "Premium Box", Price: decimal.NewFromInt(60), Type: "box"},
		{Name: "Eco Kraft", Price: decimal.NewFromInt(20), Type: "eco"},
	}
	if err := db.Create(&wraps).Error; err != nil {
		return err
	}

	logger.Info("Gift wraps seeded successfully", map[string]interface{}{
		"total_gift_wraps": len(wraps),
	})
	return nil
}
