package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ReviewsHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewsHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	productID, err := pathID(c, l, "list_reviews_failed")
	if err != nil {
		return err
	}
	reviews, err := h.Svc.ListReviews(ctx, productID)
	if err != nil {
		return fail(c, l, "list_reviews_failed", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewsHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	productID, err := pathID(c, l, "create_review_failed")
	if err != nil {
		return err
	}
	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_review_failed", "invalid body", err)
	}

	rv, err := h.Svc.CreateReview(ctx, currentUser(c), productID, req)
	if err != nil {
		return fail(c, l, "create_review_failed", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewsHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	id, err := pathID(c, l, "delete_review_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteReview(ctx, currentUser(c), id); err != nil {
		return fail(c, l, "delete_review_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
