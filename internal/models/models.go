package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	MaxGrade         = 10
	MaxCommentLength = 500
)

// ErrInvalid is returned by save hooks when a row would break a field invariant.
var ErrInvalid = errors.New("invalid field value")

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
	RoleCustomer Role = "customer"
)

// Owned is implemented by rows that belong to exactly one user.
type Owned interface {
	OwnerID() uint
}

type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Email      string    `gorm:"uniqueIndex:idx_users_email;not null"     json:"email"`
	Password   string    `gorm:"not null"                                 json:"-"`
	FirstName  *string   `gorm:"size:100"                                 json:"first_name"`
	LastName   *string   `gorm:"size:100"                                 json:"last_name"`
	IsAdmin    bool      `gorm:"not null"                                 json:"is_admin"`
	IsSupplier bool      `gorm:"not null"                                 json:"is_supplier"`
	IsCustomer bool      `gorm:"not null"                                 json:"is_customer"`
	CreatedAt  time.Time `gorm:"autoCreateTime"                           json:"created_at"`

	Products []Product `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews  []Review  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) OwnerID() uint { return u.ID }

func (u *User) HasRole(r Role) bool {
	switch r {
	case RoleAdmin:
		return u.IsAdmin
	case RoleSupplier:
		return u.IsSupplier
	case RoleCustomer:
		return u.IsCustomer
	}
	return false
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name     string `gorm:"size:100;not null"                         json:"name"`
	Slug     string `gorm:"uniqueIndex:idx_categories_slug;not null"  json:"slug"`
	IsActive bool   `gorm:"not null"                                  json:"is_active"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"                json:"id"`
	Name        string  `gorm:"size:200;not null"                       json:"name"`
	Slug        string  `gorm:"uniqueIndex:idx_products_slug;not null"  json:"slug"`
	Description string  `gorm:"type:text"                               json:"description"`
	Price       int64   `gorm:"not null"                                json:"price"`
	Stock       int     `gorm:"not null;default:0"                      json:"stock"`
	ImageURL    *string `gorm:"size:500"                                json:"image_url"`
	Rating      int     `gorm:"not null;default:0"                      json:"rating"`
	IsActive    bool    `gorm:"not null"                                json:"is_active"`
	CategoryID  uint    `gorm:"index;not null"                          json:"category_id"`
	AuthorID    *uint   `gorm:"index"                                   json:"author_id"`

	Reviews []Review `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Product) OwnerID() uint {
	if p.AuthorID == nil {
		return 0
	}
	return *p.AuthorID
}

func (p *Product) BeforeSave(*gorm.DB) error {
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalid)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalid)
	}
	return nil
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                     json:"id"`
	AuthorID  uint      `gorm:"uniqueIndex:unique_review_user;not null"      json:"author_id"`
	ProductID uint      `gorm:"uniqueIndex:unique_review_user;index;not null" json:"product_id"`
	Grade     int       `gorm:"not null"                                     json:"grade"`
	Comment   *string   `gorm:"size:500"                                     json:"comment"`
	CreatedAt time.Time `gorm:"column:datetime_created;autoCreateTime"       json:"datetime_created"`
	IsActive  bool      `gorm:"not null"                                     json:"is_active"`
}

func (r *Review) OwnerID() uint { return r.AuthorID }

func (r *Review) BeforeSave(*gorm.DB) error {
	if r.Grade < 0 || r.Grade > MaxGrade {
		return fmt.Errorf("%w: grade must be between 0 and %d", ErrInvalid, MaxGrade)
	}
	if r.Comment != nil && len([]rune(*r.Comment)) > MaxCommentLength {
		return fmt.Errorf("%w: comment longer than %d characters", ErrInvalid, MaxCommentLength)
	}
	return nil
}
