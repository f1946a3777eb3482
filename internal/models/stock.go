package models

import "time"

// ProductStock is the per-product inventory counter. It is shared mutable
// state across concurrent orders for the same product; all mutations go
// through the stock repository so the non-negative invariant stays in one
// place.
type ProductStock struct {
	ProductID         uint `json:"product_id" gorm:"primaryKey"`
	StockQty          int  `json:"stock_qty" gorm:"not null" validate:"gte=0"`
	LowStockThreshold int  `json:"low_stock_threshold" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available reports whether any stock remains.
func (s *ProductStock) Available() bool {
	return s.StockQty > 0
}

// LowStock reports whether the counter has fallen to its restock threshold.
func (s *ProductStock) LowStock() bool {
	return s.StockQty <= s.LowStockThreshold
}
