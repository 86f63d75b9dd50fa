package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

const (
	RatingUpdated = "updated"
	RatingSkipped = "skipped"
	RatingMissing = "missing"
)

// RatingAggregator keeps products.rating equal to the truncated mean grade of
// the product's active reviews.
type RatingAggregator struct {
	Metrics *metrics.Metrics
}

// Recompute must be called with the repo of the transaction that changed the
// review so the aggregate sees that change. With no active reviews the stored
// rating is left as is. A missing product is not an error.
func (a *RatingAggregator) Recompute(ctx context.Context, r *repo.GormRepo, productID uint) error {
	l := logging.FromContext(ctx).With("svc", "rating.recompute", "product_id", productID)

	sum, n, err := r.ActiveGradeStats(ctx, productID)
	if err != nil {
		return wrapInternal("aggregate grades", err)
	}
	if n == 0 {
		l.Debug("rating_skipped", "reason", "no active reviews")
		a.record(RatingSkipped)
		return nil
	}

	rating := int(sum / n)
	ok, err := r.SetProductRating(ctx, productID, rating)
	if err != nil {
		return wrapInternal("store rating", err)
	}
	if !ok {
		l.Debug("rating_skipped", "reason", "product not found")
		a.record(RatingMissing)
		return nil
	}

	l.Debug("rating_updated", "rating", rating, "reviews", n)
	a.record(RatingUpdated)
	return nil
}

func (a *RatingAggregator) record(outcome string) {
	if a == nil {
		return
	}
	a.Metrics.RecordRating(outcome)
}
