package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func orderModels() []interface{} {
	return []interface{}{
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.ProductStock{},
		&models.PaymentCard{},
	}
}

func testOrder(userID uint) *models.Order {
	userRef := userID
	return &models.Order{
		UserID:         userID,
		OrderDate:      time.Now().UTC(),
		OrderStatus:    models.OrderStatusPendingPayment,
		SubtotalAmount: decimal.NewFromFloat(50.00),
		TotalAmount:    decimal.NewFromFloat(50.00),
		Currency:       "USD",
		PaymentMethod:  models.PaymentMethodCashOnDelivery,
		PaymentStatus:  models.PaymentStatusPending,
		Items: []models.OrderItem{
			{
				ProductID:             1,
				MerchantID:            10,
				ProductNameAtPurchase: "Widget",
				Quantity:              2,
				UnitPriceAtPurchase:   decimal.NewFromFloat(25.00),
				ItemSubtotalAmount:    decimal.NewFromFloat(50.00),
				FinalPriceForItem:     decimal.NewFromFloat(50.00),
			},
		},
		StatusHistory: []models.OrderStatusHistory{
			{
				Status:          models.OrderStatusPendingPayment,
				ChangedAt:       time.Now().UTC(),
				ChangedByUserID: &userRef,
				Notes:           "Order created",
			},
		},
	}
}

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	db := openTestDB(t, "order_create", orderModels()...)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder(1)
	assert.NoError(t, repo.Create(order))
	assert.NotEmpty(t, order.OrderID)

	fetched, err := repo.GetByID(order.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, order.OrderID, fetched.OrderID)
	assert.Len(t, fetched.Items, 1)
	assert.Equal(t, "Widget", fetched.Items[0].ProductNameAtPurchase)
	assert.Len(t, fetched.StatusHistory, 1)
	assert.Equal(t, models.OrderStatusPendingPayment, fetched.StatusHistory[0].Status)
	assert.True(t, fetched.TotalAmount.Equal(decimal.NewFromFloat(50.00)))
}

func TestOrderRepositoryGetMissing(t *testing.T) {
	db := openTestDB(t, "order_missing", orderModels()...)
	repo := repositories.NewGORMOrderRepository(db)

	_, err := repo.GetByID("ORD-00000000000000-FFFFFF")
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestOrderRepositorySaveAndHistoryOrdering(t *testing.T) {
	db := openTestDB(t, "order_save", orderModels()...)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder(1)
	assert.NoError(t, repo.Create(order))

	order.OrderStatus = models.OrderStatusProcessing
	order.PaymentStatus = models.PaymentStatusSuccessful
	order.PaymentGatewayTransactionID = "txn-123"
	order.PaymentGatewayName = "simulated"
	assert.NoError(t, repo.Save(order))

	assert.NoError(t, repo.AppendHistory(&models.OrderStatusHistory{
		OrderID:   order.OrderID,
		Status:    models.OrderStatusProcessing,
		ChangedAt: time.Now().UTC().Add(time.Second),
		Notes:     "Payment received",
	}))

	fetched, err := repo.GetByID(order.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, fetched.OrderStatus)
	assert.Equal(t, models.PaymentStatusSuccessful, fetched.PaymentStatus)
	assert.Equal(t, "txn-123", fetched.PaymentGatewayTransactionID)

	// History comes back oldest first.
	assert.Len(t, fetched.StatusHistory, 2)
	assert.Equal(t, models.OrderStatusPendingPayment, fetched.StatusHistory[0].Status)
	assert.Equal(t, models.OrderStatusProcessing, fetched.StatusHistory[1].Status)

	// Saving an order that does not exist fails.
	ghost := testOrder(1)
	ghost.OrderID = "ORD-00000000000000-AAAAAA"
	assert.ErrorIs(t, repo.Save(ghost), repositories.ErrOrderNotFound)
}

func TestOrderRepositoryPagination(t *testing.T) {
	db := openTestDB(t, "order_pagination", orderModels()...)
	repo := repositories.NewGORMOrderRepository(db)

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		order := testOrder(1)
		order.Items = nil
		order.StatusHistory = nil
		order.OrderDate = base.Add(time.Duration(i) * time.Minute)
		if i%5 == 0 {
			order.OrderStatus = models.OrderStatusCancelled
		}
		assert.NoError(t, repo.Create(order))
	}

	page, err := repo.ListByUser(1, 1, 10, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Orders, 10)

	// Newest first.
	assert.True(t, page.Orders[0].OrderDate.After(page.Orders[9].OrderDate))

	// Last page holds the remainder.
	page, err = repo.ListByUser(1, 3, 10, nil)
	assert.NoError(t, err)
	assert.Len(t, page.Orders, 5)
	assert.Equal(t, 3, page.CurrentPage)

	// Status filter.
	cancelled := models.OrderStatusCancelled
	page, err = repo.ListByUser(1, 1, 10, &cancelled)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	for _, o := range page.Orders {
		assert.Equal(t, models.OrderStatusCancelled, o.OrderStatus)
	}

	// Out-of-range page numbers normalize rather than error.
	page, err = repo.ListByUser(1, 0, 0, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Orders, 10)

	// A different user sees nothing.
	page, err = repo.ListByUser(2, 1, 10, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Orders)
}

func TestOrderRepositoryMerchantFilter(t *testing.T) {
	db := openTestDB(t, "order_merchant", orderModels()...)
	repo := repositories.NewGORMOrderRepository(db)

	for i := 0; i < 4; i++ {
		order := testOrder(uint(i + 1))
		if i < 3 {
			order.Items[0].MerchantID = 10
		} else {
			order.Items[0].MerchantID = 20
		}
		assert.NoError(t, repo.Create(order))
	}

	merchantID := uint(10)
	page, err := repo.List(1, 10, nil, &merchantID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	merchantID = 20
	page, err = repo.List(1, 10, nil, &merchantID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	merchantID = 99
	page, err = repo.List(1, 10, nil, &merchantID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestGORMUnitOfWorkRollsBack(t *testing.T) {
	db := openTestDB(t, "uow_rollback", orderModels()...)
	uow := repositories.NewGORMUnitOfWork(db)
	stockRepo := repositories.NewGORMStockRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	assert.NoError(t, stockRepo.Create(&models.ProductStock{ProductID: 1, StockQty: 10}))

	var orderID string
	err := uow.Do(func(repos repositories.RepositorySet) error {
		if err := repos.Stock().Reserve(1, 4); err != nil {
			return err
		}
		order := testOrder(1)
		if err := repos.Orders().Create(order); err != nil {
			return err
		}
		orderID = order.OrderID
		return fmt.Errorf("forced failure")
	})
	assert.Error(t, err)

	// The reservation and the order both rolled back.
	qty, getErr := stockRepo.GetAvailable(1)
	assert.NoError(t, getErr)
	assert.Equal(t, 10, qty)

	_, getErr = orderRepo.GetByID(orderID)
	assert.ErrorIs(t, getErr, repositories.ErrOrderNotFound)
}

func TestGORMUnitOfWorkCommits(t *testing.T) {
	db := openTestDB(t, "uow_commit", orderModels()...)
	uow := repositories.NewGORMUnitOfWork(db)
	stockRepo := repositories.NewGORMStockRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	assert.NoError(t, stockRepo.Create(&models.ProductStock{ProductID: 1, StockQty: 10}))

	var orderID string
	err := uow.Do(func(repos repositories.RepositorySet) error {
		if err := repos.Stock().Reserve(1, 4); err != nil {
			return err
		}
		order := testOrder(1)
		if err := repos.Orders().Create(order); err != nil {
			return err
		}
		orderID = order.OrderID
		return nil
	})
	assert.NoError(t, err)

	qty, _ := stockRepo.GetAvailable(1)
	assert.Equal(t, 6, qty)

	fetched, err := orderRepo.GetByID(orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, fetched.OrderStatus)
}
