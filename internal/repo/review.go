package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
)

func (r *GormRepo) ListReviews(ctx context.Context, productID uuid.UUID, offset, limit int) (int64, []models.Review, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Review{}).Where("product_id = ?", productID)
	}
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Review, 0, limit)
	if err := db.Scopes(scope).
		Order("created_at DESC, id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error) {
	var rv models.Review
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Create(rv).Error
}

// UpdateReview writes the rating and comment of rv.
func (r *GormRepo) UpdateReview(ctx context.Context, rv *models.Review) error {
	res := r.DB.WithContext(ctx).Model(rv).
		Select("rating", "comment", "updated_at").
		Updates(rv)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteReview(ctx context.Context, productID, reviewID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
