package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) CreateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.create_cart")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.Svc.CreateCart(ctx, &actor.ID)
	if err != nil {
		return httpError(l, "create_cart_error", err)
	}

	l.Info("create_cart_success", "cart_id", cart.ID)
	return c.JSON(http.StatusCreated, transport.NewEmptyCartResponse(cart))
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_cart_error", "invalid cart id", err)
	}

	view, err := h.Svc.GetCart(ctx, id, actor)
	if err != nil {
		return httpError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(view))
}

func (h *CartHTTP) DeleteCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_cart")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "delete_cart_error", "invalid cart id", err)
	}

	if err := h.Svc.DeleteCart(ctx, id, actor); err != nil {
		return httpError(l, "delete_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "add_item_error", "invalid cart id", err)
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_item_error", "invalid body", err)
	}
	if req.Quantity < 1 {
		return badRequest(l, "add_item_error", "quantity must be at least 1", nil)
	}

	item, err := h.Svc.AddItem(ctx, cartID, req.ProductID, uint(req.Quantity), actor)
	if err != nil {
		return httpError(l, "add_item_error", err)
	}

	l.Info("add_item_success", "cart_id", cartID, "product_id", req.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, transport.NewCartLineResponse(item))
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_item_error", "invalid cart id", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return badRequest(l, "update_item_error", "invalid item id", err)
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_item_error", "invalid body", err)
	}
	if req.Quantity < 1 {
		return badRequest(l, "update_item_error", "quantity must be at least 1", nil)
	}

	item, err := h.Svc.UpdateItem(ctx, cartID, itemID, uint(req.Quantity), actor)
	if err != nil {
		return httpError(l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartLineResponse(item))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "remove_item_error", "invalid cart id", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return badRequest(l, "remove_item_error", "invalid item id", err)
	}

	if err := h.Svc.RemoveItem(ctx, cartID, itemID, actor); err != nil {
		return httpError(l, "remove_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
