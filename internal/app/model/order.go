package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order stores the priced snapshot and the gift fields at placement time.
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"userId"`
	AddressID       uint            `gorm:"not null;index" json:"addressId"`
	ShippingAddress string          `gorm:"type:text" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);default:'pending'" json:"paymentStatus"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	GiftWrapPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"giftWrapPrice"`
	DeliveryFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deliveryFee"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	IsGift          bool   `gorm:"default:false" json:"isGift"`
	GiftWrapID      *uint  `gorm:"index" json:"giftWrapId,omitempty"`
	OccasionID      *uint  `gorm:"index" json:"occasionId,omitempty"`
	RecipientID     *uint  `gorm:"index" json:"recipientId,omitempty"`
	GreetingMessage string `gorm:"type:text" json:"greetingMessage,omitempty"`
	SenderName      string `gorm:"size:100" json:"senderName,omitempty"`
	ShowSenderName  bool   `json:"showSenderName"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Address    *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	GiftWrap   *GiftWrap   `gorm:"foreignKey:GiftWrapID" json:"giftWrap,omitempty"`
	Occasion   *Occasion   `gorm:"foreignKey:OccasionID" json:"occasion,omitempty"`
	Recipient  *Recipient  `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the product as it was priced.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"orderId"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	ImageURL  string          `json:"image"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
