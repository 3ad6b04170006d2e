package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
)

// CategoryWithCount is a category with the number of products in it.
type CategoryWithCount struct {
	models.Category
	ProductCount int64
}

type CategoryPatch struct {
	Name        *string
	Description *string
}

func withProductCount(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id")
}

func (r *GormRepo) ListCategories(ctx context.Context, offset, limit int) (int64, []CategoryWithCount, error) {
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]CategoryWithCount, 0, limit)
	if err := db.Scopes(withProductCount).
		Order("categories.name ASC, categories.id ASC").
		Offset(offset).Limit(limit).
		Scan(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryWithCount, error) {
	var items []CategoryWithCount
	if err := r.DB.WithContext(ctx).Scopes(withProductCount).
		Where("categories.id = ?", id).
		Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &items[0], nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) PatchCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	var c models.Category
	db := r.DB.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if err := db.Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes the category and leaves its products
// uncategorized.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
