package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Access *service.AccessService
	Users  *service.UserService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	user, err := h.Users.Register(ctx, req)
	if err != nil {
		return fail(c, l, "register_failed", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// Token accepts the OAuth2 password grant as a form or as JSON.
func (h *AuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.token")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	res, err := h.Access.Login(ctx, req)
	if err != nil {
		return fail(c, l, "login_failed", err)
	}

	l.Info("login_successful")
	return c.JSON(http.StatusOK, res)
}
