package models

import "fmt"

// PaymentMethod identifies how an order is paid for.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodDebitCard      PaymentMethod = "debit_card"
	PaymentMethodNetBanking     PaymentMethod = "net_banking"
	PaymentMethodUPI            PaymentMethod = "upi"
	PaymentMethodWallet         PaymentMethod = "wallet"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodPaypal         PaymentMethod = "paypal"
	PaymentMethodOther          PaymentMethod = "other"
)

var paymentMethods = map[PaymentMethod]bool{
	PaymentMethodCreditCard:     true,
	PaymentMethodDebitCard:      true,
	PaymentMethodNetBanking:     true,
	PaymentMethodUPI:            true,
	PaymentMethodWallet:         true,
	PaymentMethodCashOnDelivery: true,
	PaymentMethodBankTransfer:   true,
	PaymentMethodPaypal:         true,
	PaymentMethodOther:          true,
}

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !paymentMethods[m] {
		return "", fmt.Errorf("unknown payment method: %q", s)
	}
	return m, nil
}

// RequiresCard reports whether the method needs a stored payment card.
func (m PaymentMethod) RequiresCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

// RequiresCharge reports whether the method is settled through the payment
// gateway at order time. Non-card methods settle out of band.
func (m PaymentMethod) RequiresCharge() bool {
	return m.RequiresCard()
}

// PaymentStatus is the state of the payment attached to an order.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentStatuses = map[PaymentStatus]bool{
	PaymentStatusPending:    true,
	PaymentStatusSuccessful: true,
	PaymentStatusFailed:     true,
	PaymentStatusRefunded:   true,
}

// ParsePaymentStatus validates a raw payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	p := PaymentStatus(s)
	if !paymentStatuses[p] {
		return "", fmt.Errorf("unknown payment status: %q", s)
	}
	return p, nil
}

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusPaymentFailed  OrderStatus = "payment_failed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderTransitions declares every legal order-status transition in one place.
// A status maps to the set of statuses it may move to next.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPendingPayment: {
		OrderStatusProcessing:    true,
		OrderStatusPaymentFailed: true,
		OrderStatusCancelled:     true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   true,
		OrderStatusCancelled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
		OrderStatusCancelled: true,
	},
	OrderStatusDelivered: {
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusPaymentFailed: {
		OrderStatusCancelled: true,
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// cancelRestocks marks the statuses in which an order still holds its stock
// reservation. Cancelling from one of these returns every item's quantity to
// the ledger; later statuses have shipped the goods, and PAYMENT_FAILED has
// already been restocked when the payment failed.
var cancelRestocks = map[OrderStatus]bool{
	OrderStatusPendingPayment: true,
	OrderStatusProcessing:     true,
}

// ParseOrderStatus validates a raw order status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	o := OrderStatus(s)
	if _, ok := orderTransitions[o]; !ok {
		return "", fmt.Errorf("unknown order status: %q", s)
	}
	return o, nil
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// RestocksOnCancel reports whether cancelling an order in status s must
// return its reserved quantities to stock.
func (s OrderStatus) RestocksOnCancel() bool {
	return cancelRestocks[s]
}
