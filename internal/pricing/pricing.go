package pricing

import "math"

// 税率は固定8%。設定では変えない。
const TaxRate = 0.08

// Line は計算に必要な最小限の明細。
type Line struct {
	Price    float64
	Quantity int64
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Calculate は明細スナップショットから各金額を計算する純粋関数。
// 内部は丸めずに積算し、丸めは表示時（Round2）だけ。
// 送料は小計にかかわらず常に0。
func Calculate(lines []Line) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.Price * float64(l.Quantity)
	}

	tax := subtotal * TaxRate
	shipping := 0.0

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

// Round2 は表示用に小数2桁へ丸める。
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded は表示用に各金額を小数2桁へ丸めたTotalsを返す。
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: Round2(t.Subtotal),
		Tax:      Round2(t.Tax),
		Shipping: Round2(t.Shipping),
		Total:    Round2(t.Total),
	}
}
