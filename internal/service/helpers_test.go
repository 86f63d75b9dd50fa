package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type recordedEvent struct {
	topic, key, typ string
	payload         map[string]any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Emit(topic, key, typ string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{topic: topic, key: key, typ: typ, payload: payload})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.typ)
	}
	return out
}

func (r *recorder) last() recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type testEnv struct {
	ctx     context.Context
	repo    *repo.GormRepo
	codec   *tokens.Codec
	metrics *metrics.Metrics
	events  *recorder

	access  *AccessService
	users   *UserService
	catalog *CatalogService
	reviews *ReviewService
	ratings *RatingAggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	hasher := hash.Bcrypt{Cost: bcrypt.MinCost}
	codec := tokens.NewCodec([]byte("test-jwt-secret"), tokens.DefaultAccessTTL)
	m := metrics.New("storefront", prometheus.NewRegistry())
	rec := &recorder{}
	ratings := &RatingAggregator{Metrics: m}

	return &testEnv{
		ctx:     logging.IntoContext(context.Background(), logging.Discard()),
		repo:    r,
		codec:   codec,
		metrics: m,
		events:  rec,
		access:  &AccessService{Repo: r, Tokens: codec, Hasher: hasher},
		users:   &UserService{Repo: r, Hasher: hasher, Ratings: ratings, Events: rec},
		catalog: &CatalogService{Repo: r, Events: rec},
		reviews: &ReviewService{Repo: r, Ratings: ratings, Events: rec},
		ratings: ratings,
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, transport.RegisterRequest{Email: email, Password: "password1"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) admin(t *testing.T, email string) *models.User {
	t.Helper()
	u := e.user(t, email)
	require.NoError(t, e.repo.UpdateUserRoles(e.ctx, u.ID, true, false, true))
	fresh, err := e.repo.GetUserByID(e.ctx, u.ID)
	require.NoError(t, err)
	return fresh
}

func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: name, IsActive: true}
	require.NoError(t, e.repo.CreateCategory(e.ctx, c))
	return c
}

func (e *testEnv) product(t *testing.T, author *models.User, cat *models.Category, name string) *models.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(e.ctx, author, transport.ProductRequest{
		Name: name, Description: name + " description", Price: 100, Stock: 1, CategoryID: cat.ID,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) review(t *testing.T, author *models.User, p *models.Product, grade int) *models.Review {
	t.Helper()
	rv, err := e.reviews.CreateReview(e.ctx, author, p.ID, transport.ReviewRequest{Grade: grade})
	require.NoError(t, err)
	return &rv.Review
}

func (e *testEnv) rating(t *testing.T, productID uint) int {
	t.Helper()
	p, err := e.repo.GetProduct(e.ctx, productID)
	require.NoError(t, err)
	return p.Rating
}

func ptr[T any](v T) *T { return &v }

func activeStatus(active bool) transport.ReviewStatusRequest {
	return transport.ReviewStatusRequest{IsActive: &active}
}

func roles(admin, supplier, customer bool) transport.UserStatusRequest {
	return transport.UserStatusRequest{IsAdmin: &admin, IsSupplier: &supplier, IsCustomer: &customer}
}
