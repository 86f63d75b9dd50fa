package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events Emitter
}

func makeSlug(name string) (string, error) {
	s := slug.Make(strings.TrimSpace(name))
	if s == "" {
		return "", invalid("name must contain letters or digits", nil)
	}
	return s, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.Repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, wrapInternal("list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *models.User, req transport.CategoryRequest) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_category")

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("create_category_failed", "status", 403, "reason", "not admin")
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid("invalid category", err)
	}
	sl, err := makeSlug(req.Name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: strings.TrimSpace(req.Name), Slug: sl, IsActive: true}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("create_category_failed", "status", 409, "reason", "category slug already exists", "slug", sl)
			return nil, conflict("category slug already exists", err)
		}
		return nil, wrapInternal("create category", err)
	}

	l.Info("create_category_success", "category_id", category.ID)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor *models.User, id uint, req transport.CategoryRequest) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_category", "category_id", id)

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("update_category_failed", "status", 403, "reason", "not admin")
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid("invalid category", err)
	}
	sl, err := makeSlug(req.Name)
	if err != nil {
		return nil, err
	}

	category, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category")
		}
		return nil, wrapInternal("get category", err)
	}
	category.Name = strings.TrimSpace(req.Name)
	category.Slug = sl
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.Repo.UpdateCategory(ctx, category); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			l.Warn("update_category_failed", "status", 409, "reason", "category slug already exists", "slug", sl)
			return nil, conflict("category slug already exists", err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, notFound("category")
		}
		return nil, wrapInternal("update category", err)
	}

	l.Info("update_category_success")
	return category, nil
}

// DeleteCategory has no guard of its own; the products foreign key still
// refuses to orphan products and that surfaces as a conflict.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_category", "category_id", id)

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("delete_category_failed", "status", 403, "reason", "not admin")
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound("category")
		case errors.Is(err, repo.ErrReferenced):
			l.Warn("delete_category_failed", "status", 409, "reason", "category is referenced by products")
			return conflict("category is referenced by products", err)
		}
		return wrapInternal("delete category", err)
	}

	l.Info("delete_category_success")
	return nil
}

// ListProducts pages through active products, optionally within one category.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *uint, page, size int) (*transport.ProductList, error) {
	if categoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("category")
			}
			return nil, wrapInternal("get category", err)
		}
	}

	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListActiveProducts(ctx, repo.ProductFilter{CategoryID: categoryID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, wrapInternal("list products", err)
	}
	return &transport.ProductList{Data: items, Meta: util.Meta(page, offset, limit, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product")
		}
		return nil, wrapInternal("get product", err)
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *models.User, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if actor == nil {
		return nil, ErrMissingCredential
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid product", err)
	}
	sl, err := makeSlug(req.Name)
	if err != nil {
		return nil, err
	}

	authorID := actor.ID
	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Slug:        sl,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
		CategoryID:  req.CategoryID,
		AuthorID:    &authorID,
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetCategory(ctx, req.CategoryID); err != nil {
			return err
		}
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, productWriteError(l, "create_product_failed", sl, err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	emitterOrNop(s.Events).Emit(events.TopicProducts, key(product.ID), "product_created", map[string]any{
		"productID": product.ID,
		"name":      product.Name,
		"authorID":  authorID,
	})
	return product, nil
}

// UpdateProduct is allowed to the product's author only.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *models.User, id uint, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	if err := validate.Struct(req); err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid product", err)
	}
	sl, err := makeSlug(req.Name)
	if err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("product")
			}
			return err
		}
		if !RequireOwnership(actor, p) {
			l.Warn("update_product_failed", "status", 403, "reason", "not product owner", "actor_id", actorID(actor))
			return forbidden("not product owner")
		}
		if _, err := tx.GetCategory(ctx, req.CategoryID); err != nil {
			return err
		}

		p.Name = strings.TrimSpace(req.Name)
		p.Slug = sl
		p.Description = req.Description
		p.Price = req.Price
		p.Stock = req.Stock
		p.ImageURL = req.ImageURL
		p.CategoryID = req.CategoryID
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, productWriteError(l, "update_product_failed", sl, err)
	}

	l.Info("update_product_success")
	emitterOrNop(s.Events).Emit(events.TopicProducts, key(product.ID), "product_updated", map[string]any{
		"productID": product.ID,
		"name":      product.Name,
	})
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if !RequireOwnership(actor, p) {
			l.Warn("delete_product_failed", "status", 403, "reason", "not product owner", "actor_id", actorID(actor))
			return forbidden("not product owner")
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound("product")
		}
		l.Error("delete_product_failed", "status", 500, "error", err)
		return wrapInternal("delete product", err)
	}

	l.Info("delete_product_success")
	emitterOrNop(s.Events).Emit(events.TopicProducts, key(id), "product_deleted", map[string]any{
		"productID": id,
	})
	return nil
}

// productWriteError maps failures of product create/update onto the error kinds.
func productWriteError(l *slog.Logger, event, sl string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repo.ErrReferenced):
		l.Warn(event, "status", 404, "reason", "category not found")
		return notFound("category")
	case errors.Is(err, repo.ErrDuplicate):
		l.Warn(event, "status", 409, "reason", "product slug already exists", "slug", sl)
		return conflict("product slug already exists", err)
	case validationCause(err):
		l.Warn(event, "status", 400, "reason", "invalid product", "error", err)
		return invalid(err.Error(), err)
	}
	l.Error(event, "status", 500, "error", err)
	return wrapInternal("write product", err)
}
