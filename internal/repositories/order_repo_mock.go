package repositories

import (
	"sort"
	"sync"
	"time"

	"marketplace/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		nextID: 1,
	}
}

// Create adds a new order with its items and history.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.OrderID == "" {
		order.OrderID = models.NewOrderID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.OrderID
		order.Items[i].OrderItemID = r.nextID
		r.nextID++
	}
	for i := range order.StatusHistory {
		order.StatusHistory[i].OrderID = order.OrderID
		order.StatusHistory[i].HistoryID = r.nextID
		r.nextID++
	}
	r.orders[order.OrderID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

// Save updates the mutable status fields of an order.
func (r *MockOrderRepository) Save(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.OrderID]
	if !ok {
		return ErrOrderNotFound
	}
	stored.OrderStatus = order.OrderStatus
	stored.PaymentStatus = order.PaymentStatus
	stored.PaymentGatewayTransactionID = order.PaymentGatewayTransactionID
	stored.PaymentGatewayName = order.PaymentGatewayName
	stored.InternalNotes = order.InternalNotes
	stored.UpdatedAt = time.Now()
	r.orders[order.OrderID] = stored
	return nil
}

// AppendHistory appends one audit row to an order.
func (r *MockOrderRepository) AppendHistory(entry *models.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[entry.OrderID]
	if !ok {
		return ErrOrderNotFound
	}
	entry.HistoryID = r.nextID
	r.nextID++
	history := make([]models.OrderStatusHistory, len(stored.StatusHistory), len(stored.StatusHistory)+1)
	copy(history, stored.StatusHistory)
	stored.StatusHistory = append(history, *entry)
	r.orders[entry.OrderID] = stored
	return nil
}

// ListByUser returns one page of a user's orders, newest first.
func (r *MockOrderRepository) ListByUser(userID uint, page, perPage int, status *models.OrderStatus) (*models.OrderPage, error) {
	return r.list(page, perPage, func(o *models.Order) bool {
		if o.UserID != userID {
			return false
		}
		return status == nil || o.OrderStatus == *status
	})
}

// List returns one page of all orders, optionally filtered by status and
// merchant.
func (r *MockOrderRepository) List(page, perPage int, status *models.OrderStatus, merchantID *uint) (*models.OrderPage, error) {
	return r.list(page, perPage, func(o *models.Order) bool {
		if status != nil && o.OrderStatus != *status {
			return false
		}
		if merchantID == nil {
			return true
		}
		for _, item := range o.Items {
			if item.MerchantID == *merchantID {
				return true
			}
		}
		return false
	})
}

func (r *MockOrderRepository) list(page, perPage int, match func(*models.Order) bool) (*models.OrderPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var matched []models.Order
	for _, order := range r.orders {
		if match(&order) {
			matched = append(matched, cloneOrder(order))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OrderDate.After(matched[j].OrderDate)
	})

	total := int64(len(matched))
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	return &models.OrderPage{
		Orders:      matched[start:end],
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	}, nil
}

func (r *MockOrderRepository) snapshot() map[string]models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]models.Order, len(r.orders))
	for id, order := range r.orders {
		snap[id] = cloneOrder(order)
	}
	return snap
}

func (r *MockOrderRepository) restore(snap map[string]models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = snap
}

func cloneOrder(order models.Order) models.Order {
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	history := make([]models.OrderStatusHistory, len(order.StatusHistory))
	copy(history, order.StatusHistory)
	order.Items = items
	order.StatusHistory = history
	return order
}
