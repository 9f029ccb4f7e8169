package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryRepository stands in for the order database. It answers after a fixed delay
// and can be told to fail.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	delay  time.Duration
	fail   error
}

func NewMemoryRepository(delay time.Duration) *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]*domain.Order),
		delay:  delay,
	}
}

// FailWith makes every following SaveOrder return err; nil restores normal behaviour.
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *MemoryRepository) SaveOrder(ctx context.Context, order *domain.Order) error {
	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, exists := r.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *MemoryRepository) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
