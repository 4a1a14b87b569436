package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"app/internal/cart"
	"app/internal/checkout"
	"app/internal/domain/model"
	"app/internal/infra/cache"
	"app/internal/notification"
	"app/internal/pricing"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// CheckoutUsecase は注文確定（POST /orders）の業務ロジックです。
// カートのスナップショット＋サーバー側で再計算した合計で注文を作り、
// 成功したらカートをクリアして確認メールを送る。
type CheckoutUsecase struct {
	sessions  *cart.Sessions
	tx        repo.TransactionManager
	cartCache cache.CartCache
	notifier  notification.OrderNotifier
	logger    *slog.Logger
}

func NewCheckoutUsecase(
	sessions *cart.Sessions,
	tx repo.TransactionManager,
	cartCache cache.CartCache,
	notifier notification.OrderNotifier,
	logger *slog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		sessions:  sessions,
		tx:        tx,
		cartCache: cartCache,
		notifier:  notifier,
		logger:    logger,
	}
}

type PlaceOrderInput struct {
	Draft checkout.Draft

	//クライアント申告の合計。照合してログに残すだけで、採用はしない。
	ClientTotal float64

	IdempotencyKey string
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	//チェックアウトの状態機械に沿って進める。未ログインはBeginで止まる。
	flow := checkout.NewOrchestrator()
	if err := flow.Begin(userID > 0); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := flow.SetDraft(in.Draft); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "checkout state error")
	}

	//必須項目チェック。欠けていればSubmittingへ遷移せず、注文作成には一切進まない。
	if err := flow.Submit(); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	draft := flow.Draft()

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		//キー未指定の試行にはサーバー側で割り振る（再送防止は効かない）
		key = uuid.NewString()
	}
	if len(key) > 255 {
		flow.Fail("invalid idempotency_key")
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	store := u.sessions.Get(userID)
	snapshot := store.Items()
	if len(snapshot) == 0 {
		flow.Fail("cart empty")
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//合計はサーバー側で再計算する。クライアント値は信用せず、ズレはログに残す。
	lines := make([]pricing.Line, 0, len(snapshot))
	for _, it := range snapshot {
		lines = append(lines, pricing.Line{Price: it.Price, Quantity: it.Quantity})
	}
	totals := pricing.Calculate(lines)
	serverTotal := pricing.Round2(totals.Total)

	if in.ClientTotal != 0 && math.Abs(pricing.Round2(in.ClientTotal)-serverTotal) >= 0.01 {
		u.logger.Warn("client total mismatch",
			"user_id", userID,
			"client_total", in.ClientTotal,
			"server_total", serverTotal,
		)
	}

	var out OrderOutput
	created := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		now := time.Now()
		order := model.Order{
			UserID:          userID,
			Status:          model.OrderStatusPending,
			TotalAmount:     serverTotal,
			ShippingAddress: draft.ShippingAddress(),
			PaymentMethod:   draft.PaymentMethod,
			IsPaid:          false,
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderItems := make([]model.OrderItem, 0, len(snapshot))
		for _, it := range snapshot {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:     it.ProductID,
				NameSnapshot:  it.Name,
				ImageSnapshot: it.Image,
				PriceSnapshot: it.Price,
				Quantity:      it.Quantity,
				CreatedAt:     now,
			})
		}

		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicateKey) {
			//競合（同時に同じキーが入った）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created = true
		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		//失敗は入力へ戻す。Draftは保持され、そのまま再試行できる。
		if he, ok := AsHTTPError(err); ok {
			flow.Fail(he.Message)
		} else {
			flow.Fail("")
		}
		return OrderOutput{}, err
	}

	flow.Confirm()

	//冪等リプレイは初回の結果を返すだけ。カートもメールも触らない。
	if !created {
		return out, nil
	}

	store.Clear()
	if err := u.cartCache.Delete(ctx, userID); err != nil {
		u.logger.Warn("cart cache delete failed", "user_id", userID, "err", err)
	}

	//確認メールはベストエフォート。注文の成否には関与させない。
	go u.sendConfirmation(out, draft.Email)

	return out, nil
}

func (u *CheckoutUsecase) sendConfirmation(out OrderOutput, toEmail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order := model.Order{
		ID:              out.ID,
		TotalAmount:     out.TotalAmount,
		Status:          model.OrderStatus(out.Status),
		ShippingAddress: out.ShippingAddress,
	}

	items := make([]model.OrderItem, 0, len(out.Items))
	for _, it := range out.Items {
		items = append(items, model.OrderItem{
			ProductID:     it.ProductID,
			NameSnapshot:  it.Name,
			ImageSnapshot: it.Image,
			PriceSnapshot: it.Price,
			Quantity:      it.Quantity,
		})
	}

	if err := u.notifier.SendOrderConfirmation(ctx, toEmail, order, items); err != nil {
		u.logger.Warn("order confirmation mail failed", "order_id", out.ID, "err", err)
	}
}
