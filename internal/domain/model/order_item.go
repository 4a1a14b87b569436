package model

import "time"

// 注文明細。name/image/priceは確定時点のスナップショット。
type OrderItem struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64     `gorm:"not null;index" json:"order_id"`
	ProductID     int64     `gorm:"not null;index" json:"product_id"`
	NameSnapshot  string    `gorm:"type:varchar(255);not null" json:"name"`
	ImageSnapshot string    `gorm:"type:varchar(512)" json:"image"`
	PriceSnapshot float64   `gorm:"not null" json:"price"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
