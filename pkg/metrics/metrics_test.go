package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	t.Parallel()

	m := New("storefront", prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusNotFound, "nope")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "0"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/products/:id", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestRecordHelpers_AndHandler(t *testing.T) {
	t.Parallel()

	m := New("storefront", prometheus.NewRegistry())
	m.RecordRating("updated")
	m.RecordRating("skipped")
	m.RecordRating("updated")
	m.RecordEvent("review_events", "published")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RatingRecomputes.WithLabelValues("updated")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `storefront_rating_recomputes_total{outcome="updated"} 2`))
	assert.True(t, strings.Contains(rec.Body.String(), `storefront_events_total{outcome="published",topic="review_events"} 1`))
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRating("updated")
		m.RecordEvent("user_events", "dropped")
	})
}
