package cart

import (
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func knife() model.Product {
	return model.Product{ID: 1, Name: "Chef's Knife", Price: 10.00, Image: "/images/knife.jpg", Category: "cutlery", IsActive: true}
}

func board() model.Product {
	return model.Product{ID: 2, Name: "Cutting Board", Price: 24.50, Image: "/images/board.jpg", Category: "prep", IsActive: true}
}

func TestStore_AddToCart_NewItem(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())

	items := s.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(1), items[0].Quantity)
	assert.Equal(t, 10.00, items[0].Price)
}

func TestStore_AddToCart_SameProductIncrements(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.AddToCart(knife())

	assert.Equal(t, int64(2), s.ProductQuantity(1))
	assert.Equal(t, int64(2), s.TotalItems())
	assert.Len(t, s.Items(), 1)
}

// 同一productIdの明細は常に1行だけ
func TestStore_NeverDuplicatesProduct(t *testing.T) {
	s := NewStore()

	for i := 0; i < 5; i++ {
		s.AddToCart(knife())
		s.AddToCart(board())
	}
	s.UpdateQuantity(1, 3)
	s.RemoveFromCart(2)

	seen := map[int64]bool{}
	for _, it := range s.Items() {
		assert.False(t, seen[it.ProductID], "duplicate line for product %d", it.ProductID)
		seen[it.ProductID] = true
		assert.Greater(t, it.Quantity, int64(0))
	}
}

// 価格は追加時点のスナップショット。後でカタログ価格が変わっても明細は変わらない。
func TestStore_PriceSnapshotAtAddTime(t *testing.T) {
	s := NewStore()

	p := knife()
	s.AddToCart(p)

	p.Price = 99.99
	s.AddToCart(p)

	items := s.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, 10.00, items[0].Price)
}

func TestStore_RemoveFromCart_Decrements(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.AddToCart(knife())
	s.RemoveFromCart(1)

	assert.Equal(t, int64(1), s.ProductQuantity(1))
}

// addToCartしてquantity回removeFromCartすると元に戻る
func TestStore_AddRemoveRoundTrip(t *testing.T) {
	s := NewStore()
	s.AddToCart(board())

	for i := 0; i < 3; i++ {
		s.AddToCart(knife())
	}
	for i := 0; i < 3; i++ {
		s.RemoveFromCart(1)
	}

	assert.Equal(t, int64(0), s.ProductQuantity(1))
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, int64(2), s.Items()[0].ProductID)
}

func TestStore_RemoveFromCart_DeletesLineAtZero(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.RemoveFromCart(1)

	assert.Len(t, s.Items(), 0)
	assert.Equal(t, int64(0), s.TotalItems())
}

func TestStore_RemoveItem_IgnoresQuantity(t *testing.T) {
	s := NewStore()

	for i := 0; i < 4; i++ {
		s.AddToCart(knife())
	}
	s.RemoveItem(1)

	assert.Len(t, s.Items(), 0)
}

func TestStore_UpdateQuantity_PositiveDelta(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.UpdateQuantity(1, 4)

	assert.Equal(t, int64(5), s.ProductQuantity(1))
}

// 大きな負のdeltaは0でクランプして明細ごと削除。負の数量にはならない。
func TestStore_UpdateQuantity_ClampsAtZero(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.UpdateQuantity(1, 2) // quantity 3
	s.UpdateQuantity(1, -999)

	assert.Equal(t, int64(0), s.ProductQuantity(1))
	assert.Len(t, s.Items(), 0)
}

func TestStore_UpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	s := NewStore()

	s.UpdateQuantity(42, 3)

	assert.Len(t, s.Items(), 0)
}

func TestStore_TotalItems_SumsQuantities(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.AddToCart(knife())
	s.AddToCart(board())

	//明細は2行、数量合計は3
	assert.Len(t, s.Items(), 2)
	assert.Equal(t, int64(3), s.TotalItems())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()

	s.AddToCart(knife())
	s.AddToCart(board())
	s.Clear()

	assert.Len(t, s.Items(), 0)
	assert.Equal(t, int64(0), s.TotalItems())
}

// 並びは追加順のまま
func TestStore_InsertionOrderPreserved(t *testing.T) {
	s := NewStore()

	s.AddToCart(board())
	s.AddToCart(knife())
	s.AddToCart(board())

	items := s.Items()
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, int64(1), items[1].ProductID)
}

func TestStore_Restore_DropsInvalidLines(t *testing.T) {
	s := NewStore()

	s.Restore([]LineItem{
		{ProductID: 1, Name: "A", Price: 10, Quantity: 2},
		{ProductID: 1, Name: "A dup", Price: 10, Quantity: 1},
		{ProductID: 2, Name: "B", Price: 5, Quantity: 0},
		{ProductID: 3, Name: "C", Price: 7, Quantity: 1},
	})

	items := s.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, int64(3), items[1].ProductID)
}

// Itemsはコピーを返す。呼び出し側で書き換えても中身は変わらない。
func TestStore_ItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddToCart(knife())

	items := s.Items()
	items[0].Quantity = 100

	assert.Equal(t, int64(1), s.ProductQuantity(1))
}
