package repositories

// RepositorySet exposes the repositories bound to one transaction.
type RepositorySet interface {
	Orders() OrderRepository
	Stock() StockRepository
	Cards() PaymentCardRepository
}

// UnitOfWork scopes a group of repository calls to a single atomic
// transaction. The callback's repositories share one transaction handle; a
// non-nil error rolls everything back, otherwise the transaction commits on
// return.
type UnitOfWork interface {
	Do(fn func(repos RepositorySet) error) error
}
