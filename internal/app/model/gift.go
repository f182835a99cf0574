package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftWrap is a purchasable wrapping add-on.
type GiftWrap struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Name      string          `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Type      string          `gorm:"size:50" json:"type"`
	ImageURL  string          `json:"image"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (GiftWrap) TableName() string {
	return "gift_wraps"
}

// Occasion tags a gift order (birthday, anniversary, ...).
type Occasion struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Emoji     string         `gorm:"size:16" json:"emoji"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Occasion) TableName() string {
	return "occasions"
}

// Recipient is a saved gift receiver belonging to a user.
type Recipient struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Phone     string         `gorm:"size:30;not null" json:"phone"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Recipient) TableName() string {
	return "recipients"
}
