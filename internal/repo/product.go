package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, filter ProductFilter, offset, limit int) (int64, []models.Product, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&models.Product{})
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		return db
	}
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := db.Scopes(scope).
		Order("name ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	var prod models.Product
	db := r.DB.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}

	if patch.Name != nil {
		prod.Name = *patch.Name
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.Price != nil {
		prod.Price = *patch.Price
	}
	if patch.Stock != nil {
		prod.Stock = *patch.Stock
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == uuid.Nil {
			prod.CategoryID = nil
		} else {
			id := *patch.CategoryID
			prod.CategoryID = &id
		}
	}

	if err := db.Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct removes the product together with its reviews.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SearchProducts is a plain substring match on name and description, used
// when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Product{}).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := db.Scopes(scope).Order("name ASC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
