package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return classify(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, c *models.Category) error {
	res := r.DB.WithContext(ctx).Model(c).Select("name", "slug", "is_active").Updates(c)
	return affected(res)
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return affected(r.DB.WithContext(ctx).Delete(&models.Category{}, id))
}
