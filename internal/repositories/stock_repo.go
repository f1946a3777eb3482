package repositories

import (
	"errors"
	"fmt"
)

// ErrStockNotFound is returned when no stock row exists for a product.
var ErrStockNotFound = errors.New("product stock not found")

// InsufficientStockError is returned when a reservation asks for more than
// the available quantity.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

// StockRepository is the inventory ledger. Reserve and Restore are the only
// two paths that may mutate a stock counter.
type StockRepository interface {
	// Reserve atomically checks stock_qty >= qty and decrements it. Two
	// concurrent reservations for the same product can never together
	// exceed the available quantity.
	Reserve(productID uint, qty int) error
	// Restore returns a previously reserved quantity to stock. Callers must
	// restore exactly what they reserved, exactly once.
	Restore(productID uint, qty int) error
	GetAvailable(productID uint) (int, error)
}
