package cache

import (
	"context"
	"errors"

	"app/internal/cart"
)

// CartCache はセッションカートのベストエフォートなスナップショット置き場。
// 取れなくてもリクエストは失敗させない。真実は常にメモリ上のカート側。
type CartCache interface {
	Get(ctx context.Context, userID int64) ([]cart.LineItem, error)
	Set(ctx context.Context, userID int64, items []cart.LineItem) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
