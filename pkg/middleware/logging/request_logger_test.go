package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))

	e.GET("/items/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		c.Set(UserIDKey, uint(7))
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/3", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "item not found")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, done map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &done))

	assert.Equal(t, "inside_handler", inner["msg"])
	assert.Equal(t, "req-1", inner["request_id"], "handler logger carries request attrs")

	assert.Equal(t, "request_completed", done["msg"])
	assert.Equal(t, "WARN", done["level"])
	assert.Equal(t, "/items/:id", done["route"])
	assert.EqualValues(t, 404, done["status"])
	assert.EqualValues(t, 7, done["user_id"])
}
