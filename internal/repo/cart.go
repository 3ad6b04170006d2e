package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phimart/internal/models"
)

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

func (r *GormRepo) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockCart takes a row lock on the cart for the rest of the transaction
// and reloads its items.
func (r *GormRepo) LockCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	db := r.DB.WithContext(ctx)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	if err := db.Where("cart_id = ?", id).Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) SetCartOwner(ctx context.Context, id, userID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND user_id IS NULL", id).
		Update("user_id", userID)
	return res.Error
}

// DeleteCart reports how many cart rows were removed.
func (r *GormRepo) DeleteCart(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Cart{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

// AddCartItem inserts a cart line or, when the product is already in the
// cart, adds to its quantity in the same statement. item is reloaded with
// the stored row.
func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
		}),
	}).Create(item).Error
	if err != nil {
		return err
	}

	var stored models.CartItem
	if err := db.Where("cart_id = ? AND product_id = ?", item.CartID, item.ProductID).First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

func (r *GormRepo) UpdateCartItem(ctx context.Context, cartID, itemID uuid.UUID, qty uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND cart_id = ?", itemID, cartID).
			First(&item).Error; err != nil {
			return err
		}
		if err := tx.Model(&item).Update("quantity", qty).Error; err != nil {
			return err
		}
		item.Quantity = qty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
