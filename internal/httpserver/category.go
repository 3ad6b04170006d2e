package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/internal/util"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_categories")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListCategories(ctx, offset, limit)
	if err != nil {
		return httpError(l, "get_categories_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.CategoryResponse]{
		Data: transport.NewCategoryList(items),
		Meta: util.NewMeta(offset, limit, total),
	})
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_category")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_category_error", "invalid category id", err)
	}

	category, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return httpError(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponse(category))
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create_category")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_create_error", "invalid body", err)
	}

	category, err := h.Svc.CreateCategory(ctx, service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return httpError(l, "category_create_error", err)
	}

	l.Info("category_create_success", "category_id", category.ID)
	return c.JSON(http.StatusCreated, transport.NewCategoryResponse(category))
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.patch_category")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "category_patch_error", "invalid category id", err)
	}

	var req transport.PatchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_patch_error", "invalid body", err)
	}

	category, err := h.Svc.PatchCategory(ctx, id, repo.CategoryPatch{Name: req.Name, Description: req.Description})
	if err != nil {
		return httpError(l, "category_patch_error", err)
	}

	l.Info("category_patch_success", "category_id", id)
	return c.JSON(http.StatusOK, transport.NewCategoryResponse(category))
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete_category")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "category_delete_error", "invalid category id", err)
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return httpError(l, "category_delete_error", err)
	}

	l.Info("category_delete_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}
