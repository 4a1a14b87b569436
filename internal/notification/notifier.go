package notification

import (
	"context"

	"app/internal/domain/model"
)

// OrderNotifier は注文確定メールの送信口。
// 送信失敗しても注文自体は成立させる（ベストエフォート）。
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, toEmail string, order model.Order, items []model.OrderItem) error
}

// NoopNotifier はメール設定が無いときに使う何もしない実装。
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (NoopNotifier) SendOrderConfirmation(ctx context.Context, toEmail string, order model.Order, items []model.OrderItem) error {
	return nil
}
