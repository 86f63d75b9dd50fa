package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

// ReviewService owns review writes. Every write recomputes the parent
// product's rating inside the same transaction.
type ReviewService struct {
	Repo    *repo.GormRepo
	Ratings *RatingAggregator
	Events  Emitter
}

func (s *ReviewService) ListReviews(ctx context.Context, productID uint) ([]transport.ReviewView, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product")
		}
		return nil, wrapInternal("get product", err)
	}

	reviews, err := s.Repo.ListActiveReviews(ctx, productID)
	if err != nil {
		return nil, wrapInternal("list reviews", err)
	}

	ids := make([]uint, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.AuthorID)
	}
	authors, err := s.Repo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, wrapInternal("load review authors", err)
	}

	out := make([]transport.ReviewView, 0, len(reviews))
	for _, rv := range reviews {
		view := transport.ReviewView{Review: rv}
		if u, ok := authors[rv.AuthorID]; ok {
			pub := transport.NewUserPublic(u)
			view.Author = &pub
		}
		out = append(out, view)
	}
	return out, nil
}

// CreateReview returns the stored review with its author embedded, the same
// shape ListReviews produces.
func (s *ReviewService) CreateReview(ctx context.Context, actor *models.User, productID uint, req transport.ReviewRequest) (*transport.ReviewView, error) {
	l := logging.FromContext(ctx).With("svc", "reviews.create", "product_id", productID)

	if actor == nil {
		return nil, ErrMissingCredential
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("create_review_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid review", err)
	}

	review := &models.Review{
		AuthorID:  actor.ID,
		ProductID: productID,
		Grade:     req.Grade,
		Comment:   req.Comment,
		IsActive:  true,
	}
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("product")
			}
			return err
		}
		if err := tx.CreateReview(ctx, review); err != nil {
			return err
		}
		return s.Ratings.Recompute(ctx, tx, productID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			l.Warn("create_review_failed", "status", 404, "reason", "product not found")
			return nil, err
		case errors.Is(err, repo.ErrDuplicate):
			l.Warn("create_review_failed", "status", 409, "reason", "user already reviewed this product", "author_id", actor.ID)
			return nil, conflict("user already reviewed this product", err)
		case errors.Is(err, repo.ErrReferenced):
			return nil, notFound("product")
		case validationCause(err):
			return nil, invalid(err.Error(), err)
		}
		l.Error("create_review_failed", "status", 500, "error", err)
		return nil, wrapInternal("create review", err)
	}

	l.Info("create_review_success", "review_id", review.ID)
	emitterOrNop(s.Events).Emit(events.TopicReviews, key(productID), "review_created", map[string]any{
		"reviewID":  review.ID,
		"productID": productID,
		"authorID":  actor.ID,
		"grade":     review.Grade,
	})
	author := transport.NewUserPublic(*actor)
	return &transport.ReviewView{Review: *review, Author: &author}, nil
}

// DeleteReview is allowed to the review's author only.
func (s *ReviewService) DeleteReview(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "reviews.delete", "review_id", id)

	var productID uint
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		rv, err := tx.GetReview(ctx, id)
		if err != nil {
			return err
		}
		if !RequireOwnership(actor, rv) {
			l.Warn("delete_review_failed", "status", 403, "reason", "not author", "actor_id", actorID(actor))
			return forbidden("not review author")
		}
		if err := tx.DeleteReview(ctx, id); err != nil {
			return err
		}
		productID = rv.ProductID
		return s.Ratings.Recompute(ctx, tx, rv.ProductID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound("review")
		}
		l.Error("delete_review_failed", "status", 500, "error", err)
		return wrapInternal("delete review", err)
	}

	l.Info("delete_review_success", "product_id", productID)
	emitterOrNop(s.Events).Emit(events.TopicReviews, key(productID), "review_deleted", map[string]any{
		"reviewID":  id,
		"productID": productID,
	})
	return nil
}

// SetReviewStatus hides or unhides a review. Admin only.
func (s *ReviewService) SetReviewStatus(ctx context.Context, actor *models.User, id uint, req transport.ReviewStatusRequest) (*transport.ReviewView, error) {
	l := logging.FromContext(ctx).With("svc", "reviews.set_status", "review_id", id)

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("set_review_status_failed", "status", 403, "reason", "not admin")
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("set_review_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid review status", err)
	}
	active := *req.IsActive

	var view *transport.ReviewView
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		rv, err := tx.GetReview(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.SetReviewActive(ctx, id, active); err != nil {
			return err
		}
		rv.IsActive = active
		view = &transport.ReviewView{Review: *rv}
		if author, err := tx.GetUserByID(ctx, rv.AuthorID); err == nil {
			pub := transport.NewUserPublic(*author)
			view.Author = &pub
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.Ratings.Recompute(ctx, tx, rv.ProductID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("review")
		}
		l.Error("set_review_status_failed", "status", 500, "error", err)
		return nil, wrapInternal("set review status", err)
	}

	l.Info("set_review_status_success", "is_active", active, "product_id", view.ProductID)
	emitterOrNop(s.Events).Emit(events.TopicReviews, key(view.ProductID), "review_status_changed", map[string]any{
		"reviewID":  id,
		"productID": view.ProductID,
		"isActive":  active,
	})
	return view, nil
}
