package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AdminHTTP struct {
	Users   *service.UserService
	Reviews *service.ReviewService
}

func (h *AdminHTTP) SetUserStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.user_status")

	id, err := pathID(c, l, "set_user_status_failed")
	if err != nil {
		return err
	}
	var req transport.UserStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_user_status_failed", "invalid body", err)
	}

	user, err := h.Users.SetRoles(ctx, currentUser(c), id, req)
	if err != nil {
		return fail(c, l, "set_user_status_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_user")

	id, err := pathID(c, l, "delete_user_failed")
	if err != nil {
		return err
	}
	if err := h.Users.DeleteUser(ctx, currentUser(c), id); err != nil {
		return fail(c, l, "delete_user_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ChangeReviewStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.review_status")

	id, err := pathID(c, l, "change_review_status_failed")
	if err != nil {
		return err
	}
	var req transport.ReviewStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_review_status_failed", "invalid body", err)
	}

	review, err := h.Reviews.SetReviewStatus(ctx, currentUser(c), id, req)
	if err != nil {
		return fail(c, l, "change_review_status_failed", err)
	}
	return c.JSON(http.StatusOK, review)
}
