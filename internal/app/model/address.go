package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AddressLabel string

const (
	AddressLabelHome  AddressLabel = "Home"
	AddressLabelWork  AddressLabel = "Work"
	AddressLabelOther AddressLabel = "Other"
)

// Address is a geocoded delivery address. At most one per user has IsDefault set;
// the repository resets the others in the same transaction.
type Address struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Label     AddressLabel   `gorm:"type:varchar(10);not null;default:'Home'" json:"label"`
	Street    string         `gorm:"type:text;not null" json:"street"`
	Apartment string         `gorm:"type:text" json:"apartment"`
	Landmark  string         `gorm:"type:text" json:"landmark"`
	City      string         `gorm:"size:100;not null" json:"city"`
	State     string         `gorm:"size:100;not null" json:"state"`
	Pincode   string         `gorm:"size:12;not null" json:"pincode"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	IsDefault bool           `gorm:"default:false" json:"isDefault"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

// OneLine renders the address the way it is shown on orders and emails.
func (a Address) OneLine() string {
	s := a.Street
	if a.Apartment != "" {
		s = a.Apartment + ", " + s
	}
	return fmt.Sprintf("%s, %s, %s - %s", s, a.City, a.State, a.Pincode)
}
