package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(c, l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (h *UsersHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	id, err := pathID(c, l, "get_user_failed")
	if err != nil {
		return err
	}
	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(c, l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_profile")

	id, err := pathID(c, l, "update_profile_failed")
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_profile_failed", "invalid body", err)
	}

	user, err := h.Svc.UpdateProfile(ctx, currentUser(c), id, req)
	if err != nil {
		return fail(c, l, "update_profile_failed", err)
	}

	l.Info("update_profile_success", "user_id", id)
	return c.JSON(http.StatusOK, user)
}

func pathID(c echo.Context, l *slog.Logger, event string) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest(l, event, "id must be a positive integer", err)
	}
	return uint(id), nil
}
