package repositories

import (
	"gorm.io/gorm"
)

// GORMUnitOfWork runs callbacks inside a GORM database transaction.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{
		db: db,
	}
}

// Do opens a transaction and hands the callback repositories bound to it.
// Returning an error rolls the whole transaction back.
func (u *GORMUnitOfWork) Do(fn func(repos RepositorySet) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositorySet{tx: tx})
	})
}

type gormRepositorySet struct {
	tx *gorm.DB
}

func (s *gormRepositorySet) Orders() OrderRepository {
	return NewGORMOrderRepository(s.tx)
}

func (s *gormRepositorySet) Stock() StockRepository {
	return NewGORMStockRepository(s.tx)
}

func (s *gormRepositorySet) Cards() PaymentCardRepository {
	return NewGORMPaymentCardRepository(s.tx)
}
