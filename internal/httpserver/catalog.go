package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(c, l, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_failed", "invalid body", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, currentUser(c), req)
	if err != nil {
		return fail(c, l, "create_category_failed", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := pathID(c, l, "update_category_failed")
	if err != nil {
		return err
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_category_failed", "invalid body", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, currentUser(c), id, req)
	if err != nil {
		return fail(c, l, "update_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathID(c, l, "delete_category_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, currentUser(c), id); err != nil {
		return fail(c, l, "delete_category_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	var categoryID *uint
	if raw := c.QueryParam("by_category_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(l, "list_products_failed", "by_category_id must be an integer", err)
		}
		id := uint(v)
		categoryID = &id
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	list, err := h.Svc.ListProducts(ctx, categoryID, page, size)
	if err != nil {
		return fail(c, l, "list_products_failed", err)
	}

	l.Info("list_products_success", "total", list.Meta.Total)
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := pathID(c, l, "get_product_failed")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_failed", "invalid body", err)
	}
	p, err := h.Svc.CreateProduct(ctx, currentUser(c), req)
	if err != nil {
		return fail(c, l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := pathID(c, l, "update_product_failed")
	if err != nil {
		return err
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_product_failed", "invalid body", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, currentUser(c), id, req)
	if err != nil {
		return fail(c, l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c, l, "delete_product_failed")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, currentUser(c), id); err != nil {
		return fail(c, l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
