package repositories

import (
	"errors"

	"marketplace/internal/models"
)

// ErrOrderNotFound is returned when an order id does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access. Create
// persists the order together with its items and initial history entry as
// one unit.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	// Save writes back the mutable status fields of an existing order;
	// items and history rows are never updated through it.
	Save(order *models.Order) error
	AppendHistory(entry *models.OrderStatusHistory) error
	ListByUser(userID uint, page, perPage int, status *models.OrderStatus) (*models.OrderPage, error)
	List(page, perPage int, status *models.OrderStatus, merchantID *uint) (*models.OrderPage, error)
}
