package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/internal/util"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

func (h *CatalogHTTP) GetReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.get_reviews")

	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_reviews_error", "invalid product id", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListReviews(ctx, productID, offset, limit)
	if err != nil {
		return httpError(l, "get_reviews_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.ReviewResponse]{
		Data: transport.NewReviewList(items),
		Meta: util.NewMeta(offset, limit, total),
	})
}

func (h *CatalogHTTP) GetReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.get_review")

	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_review_error", "invalid product id", err)
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return badRequest(l, "get_review_error", "invalid review id", err)
	}

	rv, err := h.Svc.GetReview(ctx, productID, reviewID)
	if err != nil {
		return httpError(l, "get_review_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewReviewResponse(rv))
}

func (h *CatalogHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create_review")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "review_create_error", "invalid product id", err)
	}

	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "review_create_error", "invalid body", err)
	}

	rv, err := h.Svc.CreateReview(ctx, productID, service.ReviewInput{Rating: req.Rating, Comment: req.Comment}, actor)
	if err != nil {
		return httpError(l, "review_create_error", err)
	}

	l.Info("review_create_success", "product_id", productID, "review_id", rv.ID)
	return c.JSON(http.StatusCreated, transport.NewReviewResponse(rv))
}

func (h *CatalogHTTP) PatchReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.patch_review")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "review_patch_error", "invalid product id", err)
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return badRequest(l, "review_patch_error", "invalid review id", err)
	}

	var req transport.PatchReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "review_patch_error", "invalid body", err)
	}

	rv, err := h.Svc.UpdateReview(ctx, productID, reviewID, service.ReviewPatch{Rating: req.Rating, Comment: req.Comment}, actor)
	if err != nil {
		return httpError(l, "review_patch_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewReviewResponse(rv))
}

func (h *CatalogHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete_review")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "review_delete_error", "invalid product id", err)
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return badRequest(l, "review_delete_error", "invalid review id", err)
	}

	if err := h.Svc.DeleteReview(ctx, productID, reviewID, actor); err != nil {
		return httpError(l, "review_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
