package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/pricing"

	"github.com/keighl/postmark"
	"github.com/sony/gobreaker/v2"
)

// PostmarkNotifier はPostmark経由で注文確定メールを送る。
// メールAPIが不調でもチェックアウトを巻き込まないようにサーキットブレーカーを挟む。
type PostmarkNotifier struct {
	client *postmark.Client
	from   string
	cb     *gobreaker.CircuitBreaker[struct{}]
}

func NewPostmarkNotifier(serverToken string, from string) *PostmarkNotifier {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "postmark",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
	})

	return &PostmarkNotifier{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
		cb:     cb,
	}
}

func (n *PostmarkNotifier) SendOrderConfirmation(ctx context.Context, toEmail string, order model.Order, items []model.OrderItem) error {
	subject := fmt.Sprintf("Order #%d confirmed", order.ID)
	body := buildOrderBody(order, items)

	_, err := n.cb.Execute(func() (struct{}, error) {
		_, sendErr := n.client.SendEmail(postmark.Email{
			From:     n.from,
			To:       toEmail,
			Subject:  subject,
			HtmlBody: body,
			TextBody: body,
		})
		return struct{}{}, sendErr
	})
	if err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}
	return nil
}

func buildOrderBody(order model.Order, items []model.OrderItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>Thanks for your order, %s!</p>", order.ShippingAddress.FullName)
	b.WriteString("<ul>")
	for _, it := range items {
		fmt.Fprintf(&b, "<li>%s x%d: $%.2f</li>", it.NameSnapshot, it.Quantity, pricing.Round2(it.PriceSnapshot*float64(it.Quantity)))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total: $%.2f</p>", pricing.Round2(order.TotalAmount))
	fmt.Fprintf(&b, "<p>Status: %s</p>", order.Status)

	return b.String()
}
