package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order. Monetary fields are fixed-point
// decimals; they are snapshots taken at order time and never recomputed from
// live catalog data.
type Order struct {
	OrderID   string    `json:"order_id" gorm:"primaryKey;type:varchar(50)"`
	UserID    uint      `json:"user_id" gorm:"index"`
	OrderDate time.Time `json:"order_date" gorm:"not null"`

	OrderStatus OrderStatus `json:"order_status" gorm:"type:varchar(32);not null;index"`

	SubtotalAmount decimal.Decimal `json:"subtotal_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	ShippingAmount decimal.Decimal `json:"shipping_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Currency       string          `json:"currency" gorm:"type:varchar(3);not null"`

	PaymentMethod               PaymentMethod `json:"payment_method" gorm:"type:varchar(32)"`
	PaymentStatus               PaymentStatus `json:"payment_status" gorm:"type:varchar(32);not null;index"`
	PaymentGatewayTransactionID string        `json:"payment_gateway_transaction_id" gorm:"type:varchar(255);index"`
	PaymentGatewayName          string        `json:"payment_gateway_name" gorm:"type:varchar(50)"`

	ShippingAddressID *uint `json:"shipping_address_id"`
	BillingAddressID  *uint `json:"billing_address_id"`

	ShippingMethodName string `json:"shipping_method_name" gorm:"type:varchar(100)"`
	CustomerNotes      string `json:"customer_notes" gorm:"type:text"`
	InternalNotes      string `json:"-" gorm:"type:text"`

	Items         []OrderItem          `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `json:"status_history" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalsConsistent checks the order's monetary invariant:
// total == subtotal - discount + tax + shipping, exact to the minor unit.
func (o *Order) TotalsConsistent() bool {
	expected := o.SubtotalAmount.Sub(o.DiscountAmount).Add(o.TaxAmount).Add(o.ShippingAmount)
	return o.TotalAmount.Equal(expected)
}

// NewOrderID generates an order identifier in the ORD-<timestamp>-<suffix>
// format, e.g. ORD-20250114093055-A1B2C3.
func NewOrderID() string {
	now := time.Now().UTC()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), suffix)
}

// OrderItem is a single line of an order. All price fields are immutable
// snapshots of the catalog at purchase time.
type OrderItem struct {
	OrderItemID uint   `json:"order_item_id" gorm:"primaryKey;autoIncrement"`
	OrderID     string `json:"order_id" gorm:"type:varchar(50);index"`
	ProductID   uint   `json:"product_id" gorm:"index"`
	MerchantID  uint   `json:"merchant_id" gorm:"index"`

	ProductNameAtPurchase string `json:"product_name_at_purchase" gorm:"type:varchar(255)"`
	SKUAtPurchase         string `json:"sku_at_purchase" gorm:"type:varchar(100)"`

	Quantity            int             `json:"quantity" gorm:"not null" validate:"gt=0"`
	UnitPriceAtPurchase decimal.Decimal `json:"unit_price_at_purchase" gorm:"type:decimal(10,2);not null"`
	ItemSubtotalAmount  decimal.Decimal `json:"item_subtotal_amount" gorm:"type:decimal(12,2);not null"`
	FinalPriceForItem   decimal.Decimal `json:"final_price_for_item" gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderStatusHistory is an append-only audit row. Rows are never edited or
// deleted; a nil ChangedByUserID marks a system-initiated change.
type OrderStatusHistory struct {
	HistoryID       uint        `json:"history_id" gorm:"primaryKey;autoIncrement"`
	OrderID         string      `json:"order_id" gorm:"type:varchar(50);index"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(32);not null"`
	ChangedAt       time.Time   `json:"changed_at" gorm:"not null"`
	ChangedByUserID *uint       `json:"changed_by_user_id"`
	Notes           string      `json:"notes" gorm:"type:text"`
}

// TableName keeps the singular table name used by the original schema.
func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	Total       int64   `json:"total"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"current_page"`
}
