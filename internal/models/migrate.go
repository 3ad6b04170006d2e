package models

import "gorm.io/gorm"

func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &Review{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
