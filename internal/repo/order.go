package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phimart/internal/models"
)

const itemBatchSize = 100

// CreateOrder inserts the order row and then its items in batches.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return tx.CreateInBatches(&order.Items, itemBatchSize).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns newest orders first. A nil userID lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Order{})
		if userID != nil {
			db = db.Where("user_id = ?", *userID)
		}
		return db
	}
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := db.Scopes(scope).Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// UpdateOrderStatus writes the status only if the stored version still
// equals version. It reports false when another writer got there first.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, version int64, status models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
