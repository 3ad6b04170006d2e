package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
)

var errBoom = errors.New("boom")

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (r *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Topic: topic, Key: key, Event: event})
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		switch ev := e.Event.(type) {
		case OrderEvent:
			out = append(out, ev.Type)
		case CartEvent:
			out = append(out, ev.Type)
		case ProductEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

// faultyStore wraps a Store and injects failures or races into selected
// calls. The wrapper follows the store into transactions.
type faultyStore struct {
	repo.Store

	failCreateOrder bool
	failDeleteCart  bool
	staleWrites     int
	beforeUpdate    func()
}

func (f *faultyStore) InTx(ctx context.Context, fn func(tx repo.Store) error) error {
	return f.Store.InTx(ctx, func(tx repo.Store) error {
		inner := *f
		inner.Store = tx
		return fn(&inner)
	})
}

func (f *faultyStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if f.failCreateOrder {
		return errBoom
	}
	return f.Store.CreateOrder(ctx, o)
}

func (f *faultyStore) DeleteCart(ctx context.Context, id uuid.UUID) (int64, error) {
	if f.failDeleteCart {
		return 0, errBoom
	}
	return f.Store.DeleteCart(ctx, id)
}

func (f *faultyStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, version int64, status models.OrderStatus) (bool, error) {
	if f.beforeUpdate != nil {
		hook := f.beforeUpdate
		f.beforeUpdate = nil
		hook()
	}
	if f.staleWrites > 0 {
		f.staleWrites--
		return false, nil
	}
	return f.Store.UpdateOrderStatus(ctx, id, version, status)
}
