// Package policy decides who may act on orders, carts and reviews. It
// holds no state and never touches storage.
package policy

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/phimart/internal/models"
)

type Actor struct {
	ID      uuid.UUID
	IsStaff bool
}

type Decision int

const (
	Allow Decision = iota
	Forbidden
	InvalidState
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case InvalidState:
		return "invalid_state"
	}
	return "unknown"
}

// CanCancel checks ownership before status so a non-owner never learns
// anything about the order's state.
func CanCancel(order *models.Order, actor Actor) Decision {
	if actor.IsStaff {
		return Allow
	}
	if order.UserID != actor.ID {
		return Forbidden
	}
	if order.Status == models.StatusDelivered {
		return InvalidState
	}
	return Allow
}

func CanUpdateStatus(actor Actor) bool {
	return actor.IsStaff
}

func CanView(order *models.Order, actor Actor) bool {
	return actor.IsStaff || order.UserID == actor.ID
}

// CanUseCart allows staff, the cart's owner, and anyone on a cart that has
// not been claimed yet.
func CanUseCart(cart *models.Cart, actor Actor) bool {
	return actor.IsStaff || cart.UserID == nil || *cart.UserID == actor.ID
}

func CanEditReview(review *models.Review, actor Actor) bool {
	return actor.IsStaff || review.UserID == actor.ID
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusReady, models.StatusCanceled},
	models.StatusReady:     {models.StatusDelivered, models.StatusCanceled},
	models.StatusDelivered: {},
	models.StatusCanceled:  {},
}

// CanTransition reports whether the strict lifecycle allows from -> to.
// Setting the current status again is always allowed.
func CanTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
