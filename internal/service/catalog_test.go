package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "seller@shop.io")
	cat := env.category(t, "tools")

	tests := []struct {
		name    string
		req     transport.ProductRequest
		wantErr error
		field   string
	}{
		{"zero price", transport.ProductRequest{Name: "Saw", Price: 0, Stock: 1, CategoryID: cat.ID}, ErrValidation, "price"},
		{"negative price", transport.ProductRequest{Name: "Saw", Price: -5, Stock: 1, CategoryID: cat.ID}, ErrValidation, "price"},
		{"negative stock", transport.ProductRequest{Name: "Saw", Price: 5, Stock: -1, CategoryID: cat.ID}, ErrValidation, "stock"},
		{"blank name", transport.ProductRequest{Name: "  ", Price: 5, CategoryID: cat.ID}, ErrValidation, "name"},
		{"unsluggable name", transport.ProductRequest{Name: "!!!", Price: 5, CategoryID: cat.ID}, ErrValidation, ""},
		{"unknown category", transport.ProductRequest{Name: "Saw", Price: 5, CategoryID: 999}, ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := env.catalog.CreateProduct(env.ctx, author, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
			if tt.field != "" {
				msgs := validate.Messages(err)
				require.Len(t, msgs, 1)
				assert.Equal(t, tt.field, msgs[0].Field)
			}
		})
	}

	list, err := env.catalog.ListProducts(env.ctx, nil, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list.Data, "failed creates must not write anything")
	assert.NotContains(t, env.events.types(), "product_created")
}

func TestCreateProduct_AuthorAndSlugConflict(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "seller@shop.io")
	cat := env.category(t, "tools")

	p := env.product(t, author, cat, "Power Drill")
	assert.Equal(t, "power-drill", p.Slug)
	require.NotNil(t, p.AuthorID)
	assert.Equal(t, author.ID, *p.AuthorID)
	assert.Equal(t, 0, p.Rating)
	assert.True(t, p.IsActive)

	ev := env.events.last()
	assert.Equal(t, "product_created", ev.typ)
	assert.Equal(t, "product_events", ev.topic)

	_, err := env.catalog.CreateProduct(env.ctx, env.user(t, "other@shop.io"), transport.ProductRequest{
		Name: "power drill", Price: 10, CategoryID: cat.ID,
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "product slug already exists")
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "seller@shop.io")
	stranger := env.user(t, "stranger@shop.io")
	admin := env.admin(t, "admin@shop.io")
	tools := env.category(t, "tools")
	garden := env.category(t, "garden")

	p := env.product(t, author, tools, "Hammer")
	env.product(t, author, tools, "Rake")
	env.review(t, stranger, p, 9)

	req := transport.ProductRequest{
		Name: "Big Hammer", Description: "heavier", Price: 250, Stock: 3,
		ImageURL: ptr("https://img/hammer.png"), CategoryID: garden.ID,
	}

	t.Run("stranger forbidden", func(t *testing.T) {
		_, err := env.catalog.UpdateProduct(env.ctx, stranger, p.ID, req)
		require.ErrorIs(t, err, ErrForbidden)
	})
	t.Run("admin has no override", func(t *testing.T) {
		_, err := env.catalog.UpdateProduct(env.ctx, admin, p.ID, req)
		require.ErrorIs(t, err, ErrForbidden)
	})
	t.Run("missing product", func(t *testing.T) {
		_, err := env.catalog.UpdateProduct(env.ctx, author, 999, req)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "product not found")
	})
	t.Run("missing category", func(t *testing.T) {
		bad := req
		bad.CategoryID = 999
		_, err := env.catalog.UpdateProduct(env.ctx, author, p.ID, bad)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "category not found")
	})
	t.Run("invalid stock", func(t *testing.T) {
		bad := req
		bad.Stock = -2
		_, err := env.catalog.UpdateProduct(env.ctx, author, p.ID, bad)
		require.ErrorIs(t, err, ErrValidation)
	})
	t.Run("slug taken", func(t *testing.T) {
		bad := req
		bad.Name = "RAKE"
		_, err := env.catalog.UpdateProduct(env.ctx, author, p.ID, bad)
		require.ErrorIs(t, err, ErrConflict)
	})
	t.Run("author updates every field", func(t *testing.T) {
		got, err := env.catalog.UpdateProduct(env.ctx, author, p.ID, req)
		require.NoError(t, err)

		stored, err := env.repo.GetProduct(env.ctx, p.ID)
		require.NoError(t, err)
		for _, x := range []*models.Product{got, stored} {
			assert.Equal(t, "Big Hammer", x.Name)
			assert.Equal(t, "big-hammer", x.Slug)
			assert.Equal(t, "heavier", x.Description)
			assert.EqualValues(t, 250, x.Price)
			assert.Equal(t, 3, x.Stock)
			assert.Equal(t, garden.ID, x.CategoryID)
			require.NotNil(t, x.ImageURL)
			assert.Equal(t, "https://img/hammer.png", *x.ImageURL)
		}
		assert.Equal(t, 9, stored.Rating, "rating is not writable through update")
	})
}

func TestDeleteProduct_RemovesReviews(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "seller@shop.io")
	buyer := env.user(t, "buyer@shop.io")
	admin := env.admin(t, "admin@shop.io")
	p := env.product(t, author, env.category(t, "tools"), "Wrench")
	rv := env.review(t, buyer, p, 6)

	require.ErrorIs(t, env.catalog.DeleteProduct(env.ctx, buyer, p.ID), ErrForbidden)
	require.ErrorIs(t, env.catalog.DeleteProduct(env.ctx, admin, p.ID), ErrForbidden)
	require.ErrorIs(t, env.catalog.DeleteProduct(env.ctx, author, 12345), ErrNotFound)

	require.NoError(t, env.catalog.DeleteProduct(env.ctx, author, p.ID))

	_, err := env.catalog.GetProduct(env.ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = env.repo.GetReview(env.ctx, rv.ID)
	require.Error(t, err)
	assert.Equal(t, "product_deleted", env.events.last().typ)
}

func TestCategories_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t, "admin@shop.io")
	user := env.user(t, "user@shop.io")

	_, err := env.catalog.CreateCategory(env.ctx, user, transport.CategoryRequest{Name: "Music"})
	require.ErrorIs(t, err, ErrForbidden)

	cat, err := env.catalog.CreateCategory(env.ctx, admin, transport.CategoryRequest{Name: "Home Audio"})
	require.NoError(t, err)
	assert.Equal(t, "home-audio", cat.Slug)

	_, err = env.catalog.CreateCategory(env.ctx, admin, transport.CategoryRequest{Name: "home audio"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.catalog.UpdateCategory(env.ctx, user, cat.ID, transport.CategoryRequest{Name: "Audio"})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := env.catalog.UpdateCategory(env.ctx, admin, cat.ID, transport.CategoryRequest{Name: "Audio", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "audio", updated.Slug)
	assert.False(t, updated.IsActive)

	active, err := env.catalog.ListCategories(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, active, "inactive categories are hidden")

	_, err = env.catalog.UpdateCategory(env.ctx, admin, 777, transport.CategoryRequest{Name: "X"})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, env.catalog.DeleteCategory(env.ctx, user, cat.ID), ErrForbidden)
	require.NoError(t, env.catalog.DeleteCategory(env.ctx, admin, cat.ID))
	require.ErrorIs(t, env.catalog.DeleteCategory(env.ctx, admin, cat.ID), ErrNotFound)
}

func TestDeleteCategory_ReferencedByProducts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t, "admin@shop.io")
	cat := env.category(t, "tools")
	env.product(t, admin, cat, "Pliers")

	err := env.catalog.DeleteCategory(env.ctx, admin, cat.ID)
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "category is referenced by products")

	_, err = env.repo.GetCategory(env.ctx, cat.ID)
	require.NoError(t, err)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t, "seller@shop.io")
	tools := env.category(t, "tools")
	garden := env.category(t, "garden")

	for _, n := range []string{"Axe", "Bolt", "Clamp"} {
		env.product(t, author, tools, n)
	}
	hidden := env.product(t, author, garden, "Dibber")
	require.NoError(t, env.repo.DB.Model(&models.Product{}).Where("id = ?", hidden.ID).UpdateColumn("is_active", false).Error)
	env.product(t, author, garden, "Edger")

	all, err := env.catalog.ListProducts(env.ctx, nil, 1, 2)
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.EqualValues(t, 4, all.Meta.Total)
	assert.EqualValues(t, 2, all.Meta.TotalPages)
	assert.True(t, all.Meta.HasNext)

	inGarden, err := env.catalog.ListProducts(env.ctx, &garden.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, inGarden.Data, 1)
	assert.Equal(t, "Edger", inGarden.Data[0].Name)

	_, err = env.catalog.ListProducts(env.ctx, ptr(uint(404)), 1, 20)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.catalog.GetProduct(env.ctx, hidden.ID)
	require.ErrorIs(t, err, ErrNotFound, "inactive products are not served")
}

func TestProductHooks_RejectInvalidRows(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "tools")

	err := env.repo.CreateProduct(env.ctx, &models.Product{Name: "Bad", Slug: "bad", Price: 0, CategoryID: cat.ID, IsActive: true})
	require.ErrorIs(t, err, models.ErrInvalid)

	err = env.repo.CreateProduct(env.ctx, &models.Product{Name: "Bad", Slug: "bad", Price: 1, Stock: -1, CategoryID: cat.ID, IsActive: true})
	require.ErrorIs(t, err, models.ErrInvalid)
}
