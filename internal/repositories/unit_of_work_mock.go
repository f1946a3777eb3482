package repositories

import "sync"

// MockUnitOfWork is an in-memory UnitOfWork over the mock repositories. One
// mutex serializes transactions, and a pre-callback snapshot of every store
// is rolled back when the callback fails, matching the all-or-nothing
// semantics of a database transaction.
type MockUnitOfWork struct {
	OrderRepo *MockOrderRepository
	StockRepo *MockStockRepository
	CardRepo  *MockPaymentCardRepository
	mu        sync.Mutex
}

// NewMockUnitOfWork creates a MockUnitOfWork with fresh mock repositories.
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		OrderRepo: NewMockOrderRepository(),
		StockRepo: NewMockStockRepository(),
		CardRepo:  NewMockPaymentCardRepository(),
	}
}

// Do runs the callback under the transaction mutex and restores all stores
// to their snapshots if it returns an error.
func (u *MockUnitOfWork) Do(fn func(repos RepositorySet) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	ordersSnap := u.OrderRepo.snapshot()
	stockSnap := u.StockRepo.snapshot()
	cardsSnap := u.CardRepo.snapshot()

	if err := fn(u); err != nil {
		u.OrderRepo.restore(ordersSnap)
		u.StockRepo.restore(stockSnap)
		u.CardRepo.restore(cardsSnap)
		return err
	}
	return nil
}

// Orders returns the order repository bound to this unit of work.
func (u *MockUnitOfWork) Orders() OrderRepository { return u.OrderRepo }

// Stock returns the stock repository bound to this unit of work.
func (u *MockUnitOfWork) Stock() StockRepository { return u.StockRepo }

// Cards returns the payment card repository bound to this unit of work.
func (u *MockUnitOfWork) Cards() PaymentCardRepository { return u.CardRepo }
