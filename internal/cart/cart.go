package cart

import (
	"sync"

	"app/internal/domain/model"
)

// カートの明細。Priceは追加時点のスナップショット。
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

// Store はセッション単位のカート。
// 同一商品の明細は常に1行、数量0の明細は保持しない。並びは追加順。
type Store struct {
	mu    sync.Mutex
	items []LineItem
}

func NewStore() *Store {
	return &Store{items: []LineItem{}}
}

// AddToCart は商品を1つ追加する（既存明細があれば数量+1）。
func (s *Store) AddToCart(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity++
			return
		}
	}

	s.items = append(s.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  1,
	})
}

// RemoveFromCart は数量を1減らす。0になった明細は削除する。
func (s *Store) RemoveFromCart(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity--
			if s.items[i].Quantity <= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
			}
			return
		}
	}
}

// RemoveItem は数量にかかわらず明細を削除する。
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity は数量に符号付きdeltaを加算する。下限は0で、0になった明細は削除する。
func (s *Store) UpdateQuantity(productID int64, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			q := s.items[i].Quantity + delta
			if q <= 0 {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return
			}
			s.items[i].Quantity = q
			return
		}
	}
}

// ProductQuantity は該当商品の数量を返す（無ければ0）。
func (s *Store) ProductQuantity(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			return s.items[i].Quantity
		}
	}
	return 0
}

// TotalItems は全明細の数量合計（バッジ表示用）。明細数ではない。
func (s *Store) TotalItems() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.items {
		n += s.items[i].Quantity
	}
	return n
}

// Clear はカートを空にする。注文確定後に1回だけ呼ばれる。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
}

// Items は明細のコピーを追加順で返す。
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Restore はスナップショットから明細を戻す（キャッシュ復元用）。
// 数量0以下や重複productIDの明細は捨てる。
func (s *Store) Restore(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	seen := map[int64]bool{}
	for _, it := range items {
		if it.Quantity <= 0 || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		s.items = append(s.items, it)
	}
}
