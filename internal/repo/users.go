package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return classify(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) UsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *GormRepo) UpdateUserProfile(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(u).Select("first_name", "last_name").Updates(u)
	return affected(res)
}

func (r *GormRepo) UpdateUserRoles(ctx context.Context, id uint, isAdmin, isSupplier, isCustomer bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"is_admin":    isAdmin,
		"is_supplier": isSupplier,
		"is_customer": isCustomer,
	})
	return affected(res)
}

// ReviewedProductIDs lists the products the user has reviewed, excluding the
// user's own products.
func (r *GormRepo) ReviewedProductIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Distinct().
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("reviews.author_id = ?", userID).
		Where("(products.author_id IS NULL OR products.author_id <> ?)", userID).
		Order("reviews.product_id ASC").
		Pluck("reviews.product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteUserCascade removes the user's reviews, the user's products with every
// review on them, and finally the user row.
func (r *GormRepo) DeleteUserCascade(ctx context.Context, userID uint) error {
	db := r.DB.WithContext(ctx)

	owned := db.Model(&models.Product{}).Select("id").Where("author_id = ?", userID)
	if err := db.Where("author_id = ? OR product_id IN (?)", userID, owned).Delete(&models.Review{}).Error; err != nil {
		return classify(err)
	}
	if err := db.Where("author_id = ?", userID).Delete(&models.Product{}).Error; err != nil {
		return classify(err)
	}
	return affected(db.Delete(&models.User{}, userID))
}
