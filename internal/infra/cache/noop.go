package cache

import (
	"context"

	"app/internal/cart"
)

// NoopCache はRedis未設定のときに使う何もしない実装。
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(ctx context.Context, userID int64) ([]cart.LineItem, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, userID int64, items []cart.LineItem) error {
	return nil
}

func (NoopCache) Delete(ctx context.Context, userID int64) error {
	return nil
}
