package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// OrderRepository persists placed orders. SaveOrder returns nil only when the order is stored.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	Close() error
}
