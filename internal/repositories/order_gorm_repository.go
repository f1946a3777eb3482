package repositories

import (
	"fmt"

	"marketplace/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts the order with its items and history rows in one statement
// batch. Inside a transaction this is all-or-nothing.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.OrderID == "" {
		order.OrderID = models.NewOrderID()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items and full status history, oldest
// history row first.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC, history_id ASC")
		}).
		First(&order, "order_id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// Save updates the mutable status columns of an order. Items and history are
// append-only and never touched here.
func (r *GORMOrderRepository) Save(order *models.Order) error {
	res := r.db.Model(&models.Order{}).
		Where("order_id = ?", order.OrderID).
		Updates(map[string]interface{}{
			"order_status":                   order.OrderStatus,
			"payment_status":                 order.PaymentStatus,
			"payment_gateway_transaction_id": order.PaymentGatewayTransactionID,
			"payment_gateway_name":           order.PaymentGatewayName,
			"internal_notes":                 order.InternalNotes,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save order %s: %w", order.OrderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// AppendHistory inserts one audit row. History rows are never edited or
// deleted.
func (r *GORMOrderRepository) AppendHistory(entry *models.OrderStatusHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append status history for order %s: %w", entry.OrderID, err)
	}
	return nil
}

// ListByUser returns one page of a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID uint, page, perPage int, status *models.OrderStatus) (*models.OrderPage, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("order_status = ?", *status)
	}
	return r.paginate(query, page, perPage)
}

// List returns one page of all orders, optionally filtered by status and by
// merchant (any order containing at least one item from that merchant).
func (r *GORMOrderRepository) List(page, perPage int, status *models.OrderStatus, merchantID *uint) (*models.OrderPage, error) {
	query := r.db.Model(&models.Order{})
	if status != nil {
		query = query.Where("order_status = ?", *status)
	}
	if merchantID != nil {
		merchantOrders := r.db.Model(&models.OrderItem{}).
			Select("order_id").
			Where("merchant_id = ?", *merchantID)
		query = query.Where("order_id IN (?)", merchantOrders)
	}
	return r.paginate(query, page, perPage)
}

func (r *GORMOrderRepository) paginate(query *gorm.DB, page, perPage int) (*models.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := query.Session(&gorm.Session{}).
		Preload("Items").
		Order("order_date DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &models.OrderPage{
		Orders:      orders,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	}, nil
}
