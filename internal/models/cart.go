package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is owned by a user or anonymous (UserID nil).
type Cart struct {
	ID        uuid.UUID  `gorm:"primaryKey"                                json:"id"`
	UserID    *uuid.UUID `gorm:"index"                                     json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                              json:"id"`
	CartID    uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null"   json:"cart_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null"   json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"              json:"quantity"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Cart) TableName() string {
	return "carts"
}

func (CartItem) TableName() string {
	return "cart_items"
}
