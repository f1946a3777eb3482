package repositories

import (
	"sync"

	"marketplace/internal/models"
)

// MockStockRepository is an in-memory implementation of StockRepository.
// The mutex makes Reserve a true check-and-decrement: concurrent callers
// serialize exactly like rows under a conditional UPDATE.
type MockStockRepository struct {
	stock map[uint]int
	mu    sync.Mutex
}

// NewMockStockRepository creates a new instance of MockStockRepository.
func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{
		stock: make(map[uint]int),
	}
}

// Set seeds the stock counter for a product.
func (r *MockStockRepository) Set(productID uint, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[productID] = qty
}

// Reserve checks and decrements the counter in one critical section.
func (r *MockStockRepository) Reserve(productID uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	available, ok := r.stock[productID]
	if !ok {
		return ErrStockNotFound
	}
	if available < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	r.stock[productID] = available - qty
	return nil
}

// Restore returns a quantity to the counter.
func (r *MockStockRepository) Restore(productID uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stock[productID]; !ok {
		return ErrStockNotFound
	}
	r.stock[productID] += qty
	return nil
}

// GetAvailable returns the current counter value.
func (r *MockStockRepository) GetAvailable(productID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	available, ok := r.stock[productID]
	if !ok {
		return 0, ErrStockNotFound
	}
	return available, nil
}

// Create inserts a stock row, mirroring the GORM repository's seeding helper.
func (r *MockStockRepository) Create(stock *models.ProductStock) error {
	r.Set(stock.ProductID, stock.StockQty)
	return nil
}

func (r *MockStockRepository) snapshot() map[uint]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[uint]int, len(r.stock))
	for id, qty := range r.stock {
		snap[id] = qty
	}
	return snap
}

func (r *MockStockRepository) restore(snap map[uint]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock = snap
}
