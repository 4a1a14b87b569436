package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"app/internal/cart"
	"app/internal/infra/cache"
	"app/internal/pricing"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はセッションレジストリが持つメモリ上のStoreで、DBには置かない。
// Redisキャッシュはベストエフォートなスナップショットで、失敗しても処理は続ける。
type CartUsecase struct {
	sessions    *cart.Sessions
	productRepo repo.ProductRepository
	cartCache   cache.CartCache
	logger      *slog.Logger
}

func NewCartUsecase(
	sessions *cart.Sessions,
	productRepo repo.ProductRepository,
	cartCache cache.CartCache,
	logger *slog.Logger,
) *CartUsecase {
	return &CartUsecase{
		sessions:    sessions,
		productRepo: productRepo,
		cartCache:   cartCache,
		logger:      logger,
	}
}

type CartResponse struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int64           `json:"total_items"`
	Totals     pricing.Totals  `json:"totals"`
}

// GetCart はカート取得。セッションが空ならキャッシュのスナップショットを試す。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	store := u.restore(ctx, userID)
	return u.buildResponse(store), nil
}

// AddToCart はカートに1つ追加（同一商品は数量+1、価格は追加時点でスナップショット）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	store := u.restore(ctx, userID)
	store.AddToCart(p)
	u.snapshot(ctx, userID, store)

	return u.buildResponse(store), nil
}

// Decrement は数量を1減らす（0で明細削除）。
func (u *CartUsecase) Decrement(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	store := u.restore(ctx, userID)
	store.RemoveFromCart(productID)
	u.snapshot(ctx, userID, store)

	return u.buildResponse(store), nil
}

// RemoveItem は数量にかかわらず明細を削除する。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	store := u.restore(ctx, userID)
	store.RemoveItem(productID)
	u.snapshot(ctx, userID, store)

	return u.buildResponse(store), nil
}

// UpdateQuantity は符号付きdeltaを加算する（下限0、0で明細削除）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, delta int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if delta == 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid delta")
	}

	store := u.restore(ctx, userID)
	store.UpdateQuantity(productID, delta)
	u.snapshot(ctx, userID, store)

	return u.buildResponse(store), nil
}

// ClearCart はカートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	store := u.sessions.Get(userID)
	store.Clear()

	if err := u.cartCache.Delete(ctx, userID); err != nil {
		u.logger.Warn("cart cache delete failed", "user_id", userID, "err", err)
	}

	return u.buildResponse(store), nil
}

// セッションのカートを返す。空ならキャッシュから復元を試みる。
func (u *CartUsecase) restore(ctx context.Context, userID int64) *cart.Store {
	store := u.sessions.Get(userID)
	if store.TotalItems() > 0 {
		return store
	}

	items, err := u.cartCache.Get(ctx, userID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return store
	}
	if err != nil {
		u.logger.Warn("cart cache get failed", "user_id", userID, "err", err)
		return store
	}

	store.Restore(items)
	return store
}

// 現在の明細をキャッシュへ書き出す（ベストエフォート）。
func (u *CartUsecase) snapshot(ctx context.Context, userID int64, store *cart.Store) {
	if err := u.cartCache.Set(ctx, userID, store.Items()); err != nil {
		u.logger.Warn("cart cache set failed", "user_id", userID, "err", err)
	}
}

func (u *CartUsecase) buildResponse(store *cart.Store) CartResponse {
	items := store.Items()

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Price, Quantity: it.Quantity})
	}

	return CartResponse{
		Items:      items,
		TotalItems: store.TotalItems(),
		Totals:     pricing.Calculate(lines).Rounded(),
	}
}
