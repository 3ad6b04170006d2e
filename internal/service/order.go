package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/policy"
	"github.com/Skotchmaster/phimart/internal/repo"
)

const maxStatusAttempts = 3

var (
	errCartNotFound = fmt.Errorf("%w: cart not found", ErrNotFound)
	errCartEmpty    = fmt.Errorf("%w: cart is empty", ErrInvalidState)
)

type OrderService struct {
	Store  repo.Store
	Events EventPublisher

	// StrictTransitions makes staff status updates follow policy.CanTransition.
	StrictTransitions bool
}

func NewOrderService(store repo.Store, events EventPublisher, strict bool) *OrderService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &OrderService{Store: store, Events: events, StrictTransitions: strict}
}

// CreateOrder converts a cart into a PENDING order priced at the current
// catalog prices and deletes the cart, all in one transaction. The cart
// must be anonymous or owned by userID.
func (s *OrderService) CreateOrder(ctx context.Context, cartID, userID uuid.UUID) (*models.Order, error) {
	cart, err := s.Store.GetCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, "load cart", "cart not found")
	}
	buyer := policy.Actor{ID: userID}
	if !policy.CanUseCart(cart, buyer) {
		return nil, errCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, errCartEmpty
	}

	var order *models.Order
	err = s.Store.InTx(ctx, func(tx repo.Store) error {
		locked, err := tx.LockCart(ctx, cartID)
		if err != nil {
			return notFound(err, "lock cart", "cart not found")
		}
		if !policy.CanUseCart(locked, buyer) {
			return errCartNotFound
		}
		if len(locked.Items) == 0 {
			return errCartEmpty
		}

		ids := make([]uuid.UUID, 0, len(locked.Items))
		for _, it := range locked.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		items, total, err := snapshotItems(locked.Items, products)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:     userID,
			Status:     models.StatusPending,
			TotalPrice: total,
			Version:    1,
			Items:      items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		n, err := tx.DeleteCart(ctx, cartID)
		if err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		if n != 1 {
			return errCartNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrder(ctx, "order_created", order)
	return order, nil
}

func snapshotItems(lines []models.CartItem, products map[uuid.UUID]models.Product) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s not found", ErrValidation, line.ProductID)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor policy.Actor) (*models.Order, error) {
	return s.writeStatus(ctx, orderID, "order_canceled", func(o *models.Order) (models.OrderStatus, error) {
		switch policy.CanCancel(o, actor) {
		case policy.Forbidden:
			return "", fmt.Errorf("%w: you may only modify your own orders", ErrForbidden)
		case policy.InvalidState:
			return "", fmt.Errorf("%w: a delivered order cannot be canceled", ErrInvalidState)
		}
		return models.StatusCanceled, nil
	})
}

// UpdateStatus lets staff set an order's status. Without strict
// transitions any valid status may be set from any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, actor policy.Actor) (*models.Order, error) {
	if !policy.CanUpdateStatus(actor) {
		return nil, fmt.Errorf("%w: only staff can update order status", ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if s.StrictTransitions && status == models.StatusCanceled {
		return s.CancelOrder(ctx, orderID, actor)
	}

	return s.writeStatus(ctx, orderID, "order_status_changed", func(o *models.Order) (models.OrderStatus, error) {
		if s.StrictTransitions && !policy.CanTransition(o.Status, status) {
			return "", fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidState, o.Status, status)
		}
		return status, nil
	})
}

// writeStatus re-reads the order and re-runs decide whenever the
// version-guarded write loses to a concurrent writer.
func (s *OrderService) writeStatus(ctx context.Context, orderID uuid.UUID, event string, decide func(*models.Order) (models.OrderStatus, error)) (*models.Order, error) {
	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		o, err := s.Store.GetOrder(ctx, orderID)
		if err != nil {
			return nil, notFound(err, "load order", "order not found")
		}

		target, err := decide(o)
		if err != nil {
			return nil, err
		}
		if target == o.Status {
			return o, nil
		}

		ok, err := s.Store.UpdateOrderStatus(ctx, o.ID, o.Version, target)
		if err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
		if !ok {
			continue
		}

		o.Status = target
		o.Version++
		o.UpdatedAt = time.Now().UTC()
		s.publishOrder(ctx, event, o)
		return o, nil
	}
	return nil, fmt.Errorf("%w: order was modified concurrently, retry", ErrConflict)
}

// GetOrder hides orders the actor may not see behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, actor policy.Actor) (*models.Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "load order", "order not found")
	}
	if !policy.CanView(o, actor) {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor policy.Actor, offset, limit int) (int64, []models.Order, error) {
	var owner *uuid.UUID
	if !actor.IsStaff {
		owner = &actor.ID
	}
	total, orders, err := s.Store.ListOrders(ctx, owner, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list orders: %w", err)
	}
	return total, orders, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID, actor policy.Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: only staff can delete orders", ErrForbidden)
	}
	if err := s.Store.DeleteOrder(ctx, orderID); err != nil {
		return notFound(err, "delete order", "order not found")
	}
	publish(ctx, s.Events, TopicOrderEvents, orderID.String(), OrderEvent{
		Type:       "order_deleted",
		OrderID:    orderID.String(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *OrderService) publishOrder(ctx context.Context, typ string, o *models.Order) {
	publish(ctx, s.Events, TopicOrderEvents, o.ID.String(), OrderEvent{
		Type:       typ,
		OrderID:    o.ID.String(),
		UserID:     o.UserID.String(),
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	})
}
