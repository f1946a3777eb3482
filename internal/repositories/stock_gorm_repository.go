package repositories

import (
	"fmt"

	"marketplace/internal/models"

	"gorm.io/gorm"
)

// GORMStockRepository is a GORM implementation of StockRepository.
type GORMStockRepository struct {
	db *gorm.DB
}

// NewGORMStockRepository creates a new instance of GORMStockRepository.
func NewGORMStockRepository(db *gorm.DB) *GORMStockRepository {
	return &GORMStockRepository{
		db: db,
	}
}

// Reserve decrements stock_qty with a single conditional UPDATE. The
// stock_qty >= qty guard in the WHERE clause makes the check-and-decrement
// one indivisible statement, so concurrent reservers of the same product
// serialize on the row and can never oversell.
func (r *GORMStockRepository) Reserve(productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}

	res := r.db.Model(&models.ProductStock{}).
		Where("product_id = ? AND stock_qty >= ?", productID, qty).
		Update("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row is missing or the quantity was insufficient.
		available, err := r.GetAvailable(productID)
		if err != nil {
			return err
		}
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	return nil
}

// Restore increments stock_qty. It succeeds whenever the stock row exists,
// even for products that were deactivated after the order was placed.
func (r *GORMStockRepository) Restore(productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", qty)
	}

	res := r.db.Model(&models.ProductStock{}).
		Where("product_id = ?", productID).
		Update("stock_qty", gorm.Expr("stock_qty + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStockNotFound
	}
	return nil
}

// GetAvailable returns the current stock quantity for a product.
func (r *GORMStockRepository) GetAvailable(productID uint) (int, error) {
	var stock models.ProductStock
	if err := r.db.First(&stock, "product_id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrStockNotFound
		}
		return 0, fmt.Errorf("failed to get stock for product %d: %w", productID, err)
	}
	return stock.StockQty, nil
}

// Create inserts a stock row. Used for seeding and tests.
func (r *GORMStockRepository) Create(stock *models.ProductStock) error {
	if err := r.db.Create(stock).Error; err != nil {
		return fmt.Errorf("failed to create stock row for product %d: %w", stock.ProductID, err)
	}
	return nil
}
