package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newTestServer(t *testing.T, loginRate int) *testServer {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	hasher := hash.Bcrypt{Cost: bcrypt.MinCost}
	m := metrics.New("storefront", prometheus.NewRegistry())
	ratings := &service.RatingAggregator{Metrics: m}

	e := echo.New()
	e.Validator = validate.Echo{}
	e.Use(loggingmw.RequestLogger(logging.Discard()))
	e.Use(m.Middleware())

	Register(e, &Deps{
		Access: &service.AccessService{
			Repo:   r,
			Tokens: tokens.NewCodec([]byte("http-test-secret"), tokens.DefaultAccessTTL),
			Hasher: hasher,
		},
		Users:              &service.UserService{Repo: r, Hasher: hasher, Ratings: ratings},
		Catalog:            &service.CatalogService{Repo: r},
		Reviews:            &service.ReviewService{Repo: r, Ratings: ratings},
		Ready:              r.Ping,
		Metrics:            m,
		LoginRatePerMinute: loginRate,
	})
	return &testServer{e: e, repo: r}
}

// do sends body as JSON unless it is already a string.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type idBody struct {
	ID     uint `json:"id"`
	Rating int  `json:"rating"`
}

// signup registers a user and returns their id and a fresh token.
func (s *testServer) signup(t *testing.T, email string) (uint, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/registration", "", map[string]any{"email": email, "password": "password1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[idBody](t, rec).ID

	return id, s.login(t, email, "password1")
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	form := fmt.Sprintf("username=%s&password=%s", email, password)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tok := decode[map[string]any](t, rec)
	require.Equal(t, "bearer", tok["token_type"])
	return tok["access_token"].(string)
}

func (s *testServer) promote(t *testing.T, id uint) {
	t.Helper()
	require.NoError(t, s.repo.UpdateUserRoles(context.Background(), id, true, false, true))
}

func (s *testServer) rating(t *testing.T, token string, productID uint) int {
	t.Helper()
	rec := s.do(t, http.MethodGet, fmt.Sprintf("/products/%d", productID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[idBody](t, rec).Rating
}
