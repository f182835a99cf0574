package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// PlaceholderPhonePrefix marks phone numbers generated at signup when none was given.
const PlaceholderPhonePrefix = "temp_"

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `gorm:"uniqueIndex;size:64;not null" json:"phone"` // unique; placeholder until provided
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Addresses  []Address   `gorm:"foreignKey:UserID" json:"-"`
	Recipients []Recipient `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasPlaceholderPhone reports whether the phone was generated at signup.
func (u User) HasPlaceholderPhone() bool {
	return strings.HasPrefix(u.Phone, PlaceholderPhonePrefix)
}
