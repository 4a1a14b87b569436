package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

// idempotency_keyの一意制約に当たったとき。
var ErrDuplicateKey = errors.New("duplicate idempotency key")

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//delivered遷移。is_delivered / delivered_atも同時に更新する。
	MarkDelivered(ctx context.Context, orderID int64, at time.Time) error

	//支払い確認。is_paid / paid_atを更新する。
	MarkPaid(ctx context.Context, orderID int64, at time.Time) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
