package usecase

import (
	"context"
	"net/http"
	"testing"

	"app/internal/cart"
	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// memCache はテスト用のインメモリCartCache。
type memCache struct {
	m map[int64][]cart.LineItem
}

func newMemCache() *memCache {
	return &memCache{m: map[int64][]cart.LineItem{}}
}

func (c *memCache) Get(ctx context.Context, userID int64) ([]cart.LineItem, error) {
	items, ok := c.m[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return items, nil
}

func (c *memCache) Set(ctx context.Context, userID int64, items []cart.LineItem) error {
	c.m[userID] = items
	return nil
}

func (c *memCache) Delete(ctx context.Context, userID int64) error {
	delete(c.m, userID)
	return nil
}

func activeProduct() model.Product {
	return model.Product{ID: 1, Name: "Chef's Knife", Price: 10.00, Image: "/images/knife.jpg", Category: "cutlery", IsActive: true}
}

func TestCartUsecase_AddToCart(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	productRepo := new(ProductRepoMock)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(activeProduct(), nil)

	uc := NewCartUsecase(sessions, productRepo, cache.NewNoopCache(), discardLogger())

	res, err := uc.AddToCart(context.Background(), 7, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalItems)

	res, err = uc.AddToCart(context.Background(), 7, 1)
	assert.NoError(t, err)

	//同一商品は数量加算。合計は丸め済み（$20 + 税$1.60）。
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(2), res.TotalItems)
	assert.Equal(t, 20.00, res.Totals.Subtotal)
	assert.Equal(t, 1.60, res.Totals.Tax)
	assert.Equal(t, 21.60, res.Totals.Total)
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	productRepo := new(ProductRepoMock)
	productRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	uc := NewCartUsecase(sessions, productRepo, cache.NewNoopCache(), discardLogger())

	_, err := uc.AddToCart(context.Background(), 7, 99)

	assertHTTPError(t, err, http.StatusBadRequest, "invalid")
}

// 非公開商品はカートに入れられない
func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	p := activeProduct()
	p.IsActive = false

	productRepo := new(ProductRepoMock)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(p, nil)

	uc := NewCartUsecase(sessions, productRepo, cache.NewNoopCache(), discardLogger())

	_, err := uc.AddToCart(context.Background(), 7, 1)

	assertHTTPError(t, err, http.StatusBadRequest, "invalid")
}

func TestCartUsecase_AddToCart_Unauthorized(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	uc := NewCartUsecase(sessions, new(ProductRepoMock), cache.NewNoopCache(), discardLogger())

	_, err := uc.AddToCart(context.Background(), 0, 1)

	assertHTTPError(t, err, http.StatusUnauthorized, "unauthorized")
}

func TestCartUsecase_UpdateQuantity_ZeroDeltaRejected(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	uc := NewCartUsecase(sessions, new(ProductRepoMock), cache.NewNoopCache(), discardLogger())

	_, err := uc.UpdateQuantity(context.Background(), 7, 1, 0)

	assertHTTPError(t, err, http.StatusBadRequest, "invalid delta")
}

func TestCartUsecase_Decrement_RemovesLineAtZero(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	productRepo := new(ProductRepoMock)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(activeProduct(), nil)

	uc := NewCartUsecase(sessions, productRepo, cache.NewNoopCache(), discardLogger())

	_, err := uc.AddToCart(context.Background(), 7, 1)
	assert.NoError(t, err)

	res, err := uc.Decrement(context.Background(), 7, 1)
	assert.NoError(t, err)
	assert.Len(t, res.Items, 0)
	assert.Equal(t, int64(0), res.TotalItems)
}

// セッションが空ならキャッシュのスナップショットから復元する
func TestCartUsecase_GetCart_RestoresFromCache(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	mc := newMemCache()
	mc.m[7] = []cart.LineItem{
		{ProductID: 1, Name: "Chef's Knife", Price: 10.00, Quantity: 2},
	}

	uc := NewCartUsecase(sessions, new(ProductRepoMock), mc, discardLogger())

	res, err := uc.GetCart(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(2), res.TotalItems)
	assert.Equal(t, 21.60, res.Totals.Total)
}

// セッションに中身があればキャッシュは見ない
func TestCartUsecase_GetCart_SessionWins(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	sessions.Get(7).AddToCart(activeProduct())

	mc := newMemCache()
	mc.m[7] = []cart.LineItem{
		{ProductID: 2, Name: "Stale", Price: 99.00, Quantity: 5},
	}

	uc := NewCartUsecase(sessions, new(ProductRepoMock), mc, discardLogger())

	res, err := uc.GetCart(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Items[0].ProductID)
}

func TestCartUsecase_ClearCart_DropsCacheSnapshot(t *testing.T) {
	sessions := cart.NewSessions()
	defer sessions.Close()

	productRepo := new(ProductRepoMock)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(activeProduct(), nil)

	mc := newMemCache()
	uc := NewCartUsecase(sessions, productRepo, mc, discardLogger())

	_, err := uc.AddToCart(context.Background(), 7, 1)
	assert.NoError(t, err)
	assert.Contains(t, mc.m, int64(7))

	res, err := uc.ClearCart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, res.Items, 0)
	assert.NotContains(t, mc.m, int64(7))
}
