package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type RegisterRequest struct {
	Email     string  `json:"email"      validate:"required,email,max=254"`
	Password  string  `json:"password"   validate:"required,min=6,max=72"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
}

// TokenRequest follows the OAuth2 password grant: form or JSON with username
// carrying the email.
type TokenRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
}

// UserStatusRequest replaces all three flags at once, so each must be sent.
type UserStatusRequest struct {
	IsAdmin    *bool `json:"is_admin"    validate:"required"`
	IsSupplier *bool `json:"is_supplier" validate:"required"`
	IsCustomer *bool `json:"is_customer" validate:"required"`
}

type CategoryRequest struct {
	Name     string `json:"name"      validate:"notblank,max=100"`
	IsActive *bool  `json:"is_active"`
}

type ProductRequest struct {
	Name        string  `json:"name"        validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       int64   `json:"price"       validate:"gt=0"`
	Stock       int     `json:"stock"       validate:"gte=0"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,max=500"`
	CategoryID  uint    `json:"category_id" validate:"required"`
}

type ReviewRequest struct {
	Grade   int     `json:"grade"   validate:"gte=0,lte=10"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type ReviewStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserPublic struct {
	ID        uint    `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func NewUserPublic(u models.User) UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

type ReviewView struct {
	models.Review
	Author *UserPublic `json:"author,omitempty"`
}

type Page struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductList struct {
	Data []models.Product `json:"data"`
	Meta Page             `json:"meta"`
}
