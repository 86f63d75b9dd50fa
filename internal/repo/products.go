package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	CategoryID *uint
	Offset     int
	Limit      int
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return classify(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetActiveProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListActiveProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, f.Limit)
	if err := q.Order("id ASC").Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// UpdateProduct writes the editable columns only; rating is owned by the
// aggregator and never overwritten here.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(p).
		Select("name", "slug", "description", "price", "stock", "image_url", "category_id").
		Updates(p)
	return affected(res)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return classify(err)
	}
	return affected(db.Delete(&models.Product{}, id))
}

// ActiveGradeStats returns the sum and count of grades over the product's
// active reviews.
func (r *GormRepo) ActiveGradeStats(ctx context.Context, productID uint) (sum, count int64, err error) {
	var row struct {
		Total int64
		N     int64
	}
	err = r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(SUM(grade), 0) AS total, COUNT(*) AS n").
		Where("product_id = ? AND is_active = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.N, nil
}

// SetProductRating reports whether a product row was updated. Model hooks
// are skipped.
func (r *GormRepo) SetProductRating(ctx context.Context, id uint, rating int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).UpdateColumn("rating", rating)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
