package models_test

import (
	"regexp"
	"testing"

	"marketplace/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalsConsistent(t *testing.T) {
	order := &models.Order{
		SubtotalAmount: decimal.NewFromFloat(100.00),
		DiscountAmount: decimal.NewFromFloat(10.00),
		TaxAmount:      decimal.NewFromFloat(8.50),
		ShippingAmount: decimal.NewFromFloat(5.00),
		TotalAmount:    decimal.NewFromFloat(103.50),
	}
	assert.True(t, order.TotalsConsistent())

	// Off by one cent fails.
	order.TotalAmount = decimal.NewFromFloat(103.51)
	assert.False(t, order.TotalsConsistent())

	// A zero order is consistent.
	zero := &models.Order{}
	assert.True(t, zero.TotalsConsistent())
}

func TestNewOrderID(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{14}-[0-9A-F]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := models.NewOrderID()
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}

func TestProductStockAvailability(t *testing.T) {
	stock := models.ProductStock{ProductID: 1, StockQty: 3, LowStockThreshold: 5}
	assert.True(t, stock.Available())
	assert.True(t, stock.LowStock())

	stock.StockQty = 0
	assert.False(t, stock.Available())

	stock.StockQty = 50
	assert.True(t, stock.Available())
	assert.False(t, stock.LowStock())
}
