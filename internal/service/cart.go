package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/policy"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

type CartService struct {
	Store  repo.Store
	Events EventPublisher
}

func NewCartService(store repo.Store, events EventPublisher) *CartService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &CartService{Store: store, Events: events}
}

type CartLine struct {
	Item      models.CartItem
	Product   *models.Product
	LineTotal decimal.Decimal
}

// CartView is a cart priced at current catalog prices. The total is for
// display only; orders take their own snapshot.
type CartView struct {
	Cart       *models.Cart
	Lines      []CartLine
	TotalPrice decimal.Decimal
}

// CreateCart creates an empty cart. A nil userID makes it anonymous.
func (s *CartService) CreateCart(ctx context.Context, userID *uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	if err := s.Store.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

// loadCart returns the cart when actor may use it. Carts owned by someone
// else are reported as missing.
func (s *CartService) loadCart(ctx context.Context, cartID uuid.UUID, actor policy.Actor) (*models.Cart, error) {
	cart, err := s.Store.GetCart(ctx, cartID)
	if err != nil {
		return nil, notFound(err, "load cart", "cart not found")
	}
	if !policy.CanUseCart(cart, actor) {
		return nil, errCartNotFound
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID, actor policy.Actor) (*CartView, error) {
	cart, err := s.loadCart(ctx, cartID, actor)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	view := &CartView{Cart: cart, Lines: make([]CartLine, 0, len(cart.Items)), TotalPrice: decimal.Zero}
	for _, it := range cart.Items {
		line := CartLine{Item: it, LineTotal: decimal.Zero}
		if p, ok := products[it.ProductID]; ok {
			p := p
			line.Product = &p
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		view.TotalPrice = view.TotalPrice.Add(line.LineTotal)
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}

// ClaimCart assigns an anonymous cart to userID. Owned carts are left alone.
func (s *CartService) ClaimCart(ctx context.Context, cartID, userID uuid.UUID) error {
	if err := s.Store.SetCartOwner(ctx, cartID, userID); err != nil {
		return fmt.Errorf("claim cart: %w", err)
	}
	return nil
}

func (s *CartService) DeleteCart(ctx context.Context, cartID uuid.UUID, actor policy.Actor) error {
	if _, err := s.loadCart(ctx, cartID, actor); err != nil {
		return err
	}
	n, err := s.Store.DeleteCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n == 0 {
		return errCartNotFound
	}
	s.publishCart(ctx, "cart_deleted", cartID, uuid.Nil, 0)
	return nil
}

// AddItem adds qty of a product to the cart. An anonymous cart is claimed
// by the actor on the way.
func (s *CartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty uint, actor policy.Actor) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}

	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s does not exist", ErrValidation, productID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	cart, err := s.loadCart(ctx, cartID, actor)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
	if err := s.Store.AddCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	if cart.UserID == nil {
		if err := s.ClaimCart(ctx, cartID, actor.ID); err != nil {
			logging.FromContext(ctx).Warn("claim_cart_failed", "cart_id", cartID, "error", err)
		}
	}
	s.publishCart(ctx, "cart_item_added", cartID, productID, qty)
	return item, nil
}

func (s *CartService) UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, qty uint, actor policy.Actor) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if _, err := s.loadCart(ctx, cartID, actor); err != nil {
		return nil, err
	}
	item, err := s.Store.UpdateCartItem(ctx, cartID, itemID, qty)
	if err != nil {
		return nil, notFound(err, "update cart item", "cart item not found")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID, actor policy.Actor) error {
	if _, err := s.loadCart(ctx, cartID, actor); err != nil {
		return err
	}
	if err := s.Store.DeleteCartItem(ctx, cartID, itemID); err != nil {
		return notFound(err, "delete cart item", "cart item not found")
	}
	s.publishCart(ctx, "cart_item_removed", cartID, uuid.Nil, 0)
	return nil
}

func (s *CartService) publishCart(ctx context.Context, typ string, cartID, productID uuid.UUID, qty uint) {
	ev := CartEvent{Type: typ, CartID: cartID.String(), Quantity: qty, OccurredAt: time.Now().UTC()}
	if productID != uuid.Nil {
		ev.ProductID = productID.String()
	}
	publish(ctx, s.Events, TopicCartEvents, cartID.String(), ev)
}
