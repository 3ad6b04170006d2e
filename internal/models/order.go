package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCanceled  OrderStatus = "CANCELED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Order status is the only field changed after creation; every status
// write bumps Version.
type Order struct {
	ID         uuid.UUID       `gorm:"primaryKey"                                     json:"id"`
	UserID     uuid.UUID       `gorm:"index;not null"                                 json:"user_id"`
	Status     OrderStatus     `gorm:"type:varchar(16);not null;default:PENDING"      json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"total_price"`
	Version    int64           `gorm:"not null;default:1"                             json:"-"`
	CreatedAt  time.Time       `gorm:"index"                                          json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem holds the product name and price as they were at checkout.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"primaryKey"                              json:"id"`
	OrderID     uuid.UUID       `gorm:"uniqueIndex:idx_order_product;not null"  json:"order_id"`
	ProductID   uuid.UUID       `gorm:"uniqueIndex:idx_order_product;not null"  json:"product_id"`
	ProductName string          `gorm:"not null"                                json:"product_name"`
	Quantity    uint            `gorm:"not null;check:quantity>0"               json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"             json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"             json:"line_total"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}
