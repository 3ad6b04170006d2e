package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/internal/util"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}
	if req.CartID == uuid.Nil {
		return badRequest(l, "create_order_error", "cart_id is required", nil)
	}

	order, err := h.Svc.CreateOrder(ctx, req.CartID, actor.ID)
	if err != nil {
		// Checkout reports a missing cart as 400.
		if errors.Is(err, service.ErrNotFound) {
			return badRequest(l, "create_order_error", "cart not found", err)
		}
		return httpError(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total_price", transport.Money(order.TotalPrice))
	return c.JSON(http.StatusCreated, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "invalid order id", err)
	}

	order, err := h.Svc.GetOrder(ctx, id, actor)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, actor, offset, limit)
	if err != nil {
		return httpError(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.OrderResponse]{
		Data: transport.NewOrderList(orders),
		Meta: util.NewMeta(offset, limit, total),
	})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order_error", "invalid order id", err)
	}

	order, err := h.Svc.CancelOrder(ctx, id, actor)
	if err != nil {
		return httpError(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", "invalid order id", err)
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}
	status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	order, err := h.Svc.UpdateStatus(ctx, id, status, actor)
	if err != nil {
		return httpError(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	actor, err := actorFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "delete_order_error", "invalid order id", err)
	}

	if err := h.Svc.DeleteOrder(ctx, id, actor); err != nil {
		return httpError(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}
