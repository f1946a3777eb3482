package services

import (
	"fmt"

	"marketplace/internal/models"
)

// ValidationError reports malformed or missing input. Handlers map it to a
// 4xx response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidPaymentCardError reports a card that does not exist, does not
// belong to the user, or is not active.
type InvalidPaymentCardError struct {
	CardID uint
}

func (e *InvalidPaymentCardError) Error() string {
	return fmt.Sprintf("invalid or inactive payment card %d", e.CardID)
}

// OrderNotFoundError reports a missing order.
type OrderNotFoundError struct {
	OrderID string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// InvalidStateTransitionError reports an order-status change the transition
// table does not allow.
type InvalidStateTransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot transition from %s to %s", e.OrderID, e.From, e.To)
}

// PaymentProcessingError wraps a gateway fault. The order has already been
// moved to PAYMENT_FAILED and its stock restored by the time this is
// returned; the error exists for reporting, not recovery.
type PaymentProcessingError struct {
	OrderID string
	Err     error
}

func (e *PaymentProcessingError) Error() string {
	return fmt.Sprintf("payment processing failed for order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentProcessingError) Unwrap() error {
	return e.Err
}
