package repositories_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB opens a named in-memory SQLite database. Each test uses its own
// name so tests never share state.
func openTestDB(t *testing.T, name string, testModels ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(testModels...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestStockRepositoryReserveAndRestore(t *testing.T) {
	db := openTestDB(t, "stock_reserve", &models.ProductStock{})
	repo := repositories.NewGORMStockRepository(db)

	err := repo.Create(&models.ProductStock{ProductID: 1, StockQty: 10})
	assert.NoError(t, err)

	// Reserve part of the stock.
	assert.NoError(t, repo.Reserve(1, 4))
	qty, err := repo.GetAvailable(1)
	assert.NoError(t, err)
	assert.Equal(t, 6, qty)

	// Reserving exactly the remainder drains the counter to zero.
	assert.NoError(t, repo.Reserve(1, 6))
	qty, _ = repo.GetAvailable(1)
	assert.Equal(t, 0, qty)

	// Restore brings it back.
	assert.NoError(t, repo.Restore(1, 6))
	qty, _ = repo.GetAvailable(1)
	assert.Equal(t, 6, qty)
}

func TestStockRepositoryInsufficientStock(t *testing.T) {
	db := openTestDB(t, "stock_insufficient", &models.ProductStock{})
	repo := repositories.NewGORMStockRepository(db)

	assert.NoError(t, repo.Create(&models.ProductStock{ProductID: 7, StockQty: 3}))

	err := repo.Reserve(7, 5)
	var insufficientErr *repositories.InsufficientStockError
	assert.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, uint(7), insufficientErr.ProductID)
	assert.Equal(t, 5, insufficientErr.Requested)
	assert.Equal(t, 3, insufficientErr.Available)

	// The failed reservation left the counter untouched.
	qty, err := repo.GetAvailable(7)
	assert.NoError(t, err)
	assert.Equal(t, 3, qty)
}

func TestStockRepositoryMissingProduct(t *testing.T) {
	db := openTestDB(t, "stock_missing", &models.ProductStock{})
	repo := repositories.NewGORMStockRepository(db)

	err := repo.Reserve(99, 1)
	assert.ErrorIs(t, err, repositories.ErrStockNotFound)

	err = repo.Restore(99, 1)
	assert.ErrorIs(t, err, repositories.ErrStockNotFound)

	_, err = repo.GetAvailable(99)
	assert.ErrorIs(t, err, repositories.ErrStockNotFound)
}

func TestStockRepositoryRejectsNonPositiveQuantities(t *testing.T) {
	db := openTestDB(t, "stock_nonpositive", &models.ProductStock{})
	repo := repositories.NewGORMStockRepository(db)

	assert.NoError(t, repo.Create(&models.ProductStock{ProductID: 1, StockQty: 10}))

	assert.Error(t, repo.Reserve(1, 0))
	assert.Error(t, repo.Reserve(1, -2))
	assert.Error(t, repo.Restore(1, 0))

	qty, _ := repo.GetAvailable(1)
	assert.Equal(t, 10, qty)
}

// TestMockStockRepositoryConcurrentReserve hammers one counter from many
// goroutines. With S units and reservations of q each, exactly floor(S/q)
// reservations may succeed.
func TestMockStockRepositoryConcurrentReserve(t *testing.T) {
	repo := repositories.NewMockStockRepository()
	repo.Set(1, 10)

	const goroutines = 50
	const perReservation = 3

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(1, perReservation); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 10 units / 3 per reservation = 3 winners, 1 unit left over.
	assert.Equal(t, 3, succeeded)
	qty, err := repo.GetAvailable(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, qty)
}
