package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionState, error)
	Set(ctx context.Context, sessionID string, state *domain.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never stores anything; every Get is a miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.SessionState, error) {
	return nil, ErrCacheMiss
}
func (NopCache) Set(context.Context, string, *domain.SessionState) error { return nil }
func (NopCache) Delete(context.Context, string) error                    { return nil }
