package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type Deps struct {
	Access  *service.AccessService
	Users   *service.UserService
	Catalog *service.CatalogService
	Reviews *service.ReviewService

	// Ready reports whether the service can take traffic. Nil means always ready.
	Ready   func(ctx context.Context) error
	Metrics *metrics.Metrics

	// LoginRatePerMinute caps token requests per client IP; zero disables it.
	LoginRatePerMinute int
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	auth := &BearerAuth{Resolver: d.Access}
	authH := &AuthHTTP{Access: d.Access, Users: d.Users}
	usersH := &UsersHTTP{Svc: d.Users}
	adminH := &AdminHTTP{Users: d.Users, Reviews: d.Reviews}
	catalogH := &CatalogHTTP{Svc: d.Catalog}
	reviewsH := &ReviewsHTTP{Svc: d.Reviews}

	a := e.Group("/auth")
	a.POST("/registration", authH.Register)
	a.POST("/token", authH.Token, loginLimiter(d.LoginRatePerMinute))

	// Guards sit on routes, not groups, so unmatched paths stay 404.
	authed := auth.RequireAuth
	adminOnly := []echo.MiddlewareFunc{auth.RequireAuth, auth.RequireAdmin}

	users := e.Group("/users")
	users.GET("", usersH.ListUsers, authed)
	users.GET("/current", usersH.Current, authed)
	users.GET("/:id", usersH.GetUser, authed)
	users.PUT("/:id", usersH.UpdateProfile, authed)

	admin := e.Group("/admin")
	admin.PUT("/user_status/:id", adminH.SetUserStatus, adminOnly...)
	admin.DELETE("/delete_user/:id", adminH.DeleteUser, adminOnly...)
	admin.PUT("/change_review_status/:id", adminH.ChangeReviewStatus, adminOnly...)

	category := e.Group("/category")
	category.GET("", catalogH.ListCategories)
	category.POST("", catalogH.CreateCategory, authed)
	category.PUT("/:id", catalogH.UpdateCategory, authed)
	category.DELETE("/:id", catalogH.DeleteCategory, authed)

	products := e.Group("/products")
	products.GET("", catalogH.ListProducts, authed)
	products.GET("/:id", catalogH.GetProduct, authed)
	products.POST("", catalogH.CreateProduct, authed)
	products.PUT("/:id", catalogH.UpdateProduct, authed)
	products.DELETE("/:id", catalogH.DeleteProduct, authed)
	products.GET("/:id/reviews", reviewsH.ListReviews, authed)
	products.POST("/:id/reviews", reviewsH.CreateReview, authed)
	products.DELETE("/reviews/:id", reviewsH.DeleteReview, authed)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Ready(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}

func loginLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logging.FromContext(c.Request().Context()).Warn("login_rate_limited", "status", 429, "remote_ip", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}
