package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/internal/util"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_failed", "invalid product id", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return httpError(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	var filter repo.ProductFilter
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(l, "get_products_error", "invalid category id", err)
		}
		filter.CategoryID = &id
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		return httpError(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.ProductResponse]{
		Data: transport.NewProductList(items),
		Meta: util.NewMeta(offset, limit, total),
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return httpError(l, "search_products_error", err)
	}

	l.Info("search_products_success", "query", q, "total", total)
	return c.JSON(http.StatusOK, transport.ListResponse[transport.ProductResponse]{
		Data: transport.NewProductList(items),
		Meta: util.NewMeta(offset, limit, total),
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	product, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return httpError(l, "product_create_error", err)
	}

	l.Info("product_create_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch_error", "invalid product id", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch_error", "invalid body", err)
	}

	product, err := h.Svc.PatchProduct(ctx, id, repo.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return httpError(l, "product_patch_error", err)
	}

	l.Info("product_patch_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete_error", "invalid product id", err)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return httpError(l, "product_delete_error", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
