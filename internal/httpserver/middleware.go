package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

const userKey = "user"

type IdentityResolver interface {
	RequireAuthenticated(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth resolves "Authorization: Bearer <token>" to the stored user row.
type BearerAuth struct {
	Resolver IdentityResolver
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "bearer_auth")

		user, err := m.Resolver.RequireAuthenticated(ctx, bearerToken(c.Request()))
		if err != nil {
			return fail(c, l, "auth_failed", err)
		}

		c.Set(userKey, user)
		c.Set(loggingmw.UserIDKey, user.ID)
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_admin")
		if _, err := service.RequireRole(currentUser(c), models.RoleAdmin); err != nil {
			return fail(c, l, "admin_required", err)
		}
		return next(c)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
