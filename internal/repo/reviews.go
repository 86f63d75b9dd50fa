package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return classify(r.DB.WithContext(ctx).Create(rv).Error)
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *GormRepo) ListActiveReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("datetime_created ASC, id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormRepo) SetReviewActive(ctx context.Context, id uint, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).UpdateColumn("is_active", active)
	return affected(res)
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) error {
	return affected(r.DB.WithContext(ctx).Delete(&models.Review{}, id))
}
