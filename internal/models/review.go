package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a product. Only Rating and Comment change
// after creation.
type Review struct {
	ID        uuid.UUID `gorm:"primaryKey"                            json:"id"`
	ProductID uuid.UUID `gorm:"index;not null"                        json:"product_id"`
	UserID    uuid.UUID `gorm:"index;not null"                        json:"user_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"type:text"                             json:"comment"`
	CreatedAt time.Time `gorm:"index"                                 json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}
