package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
)

// OrderEventPublisher publishes order lifecycle events. A nil publisher
// disables publishing.
type OrderEventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderItemRequest is one requested line item. All price fields are
// snapshots supplied by the caller and copied verbatim onto the order.
type OrderItemRequest struct {
	ProductID             uint            `json:"product_id" validate:"required"`
	MerchantID            uint            `json:"merchant_id"`
	ProductNameAtPurchase string          `json:"product_name_at_purchase"`
	SKUAtPurchase         string          `json:"sku_at_purchase"`
	Quantity              int             `json:"quantity" validate:"required,gt=0"`
	UnitPriceAtPurchase   decimal.Decimal `json:"unit_price_at_purchase"`
	ItemSubtotalAmount    decimal.Decimal `json:"item_subtotal_amount"`
	FinalPriceForItem     decimal.Decimal `json:"final_price_for_item"`
}

// CreateOrderRequest is the input for placing an order.
type CreateOrderRequest struct {
	PaymentMethod string             `json:"payment_method" validate:"required"`
	PaymentCardID uint               `json:"payment_card_id"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`

	SubtotalAmount decimal.Decimal `json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`

	ShippingAddressID  *uint  `json:"shipping_address_id"`
	BillingAddressID   *uint  `json:"billing_address_id"`
	ShippingMethodName string `json:"shipping_method_name"`
	CustomerNotes      string `json:"customer_notes"`
}

// OrderService orchestrates order creation, cancellation, and status
// updates. It owns the order/payment state machine; all stock mutations go
// through the inventory ledger inside unit-of-work transactions.
type OrderService struct {
	uow     repositories.UnitOfWork
	orders  repositories.OrderRepository
	cards   repositories.PaymentCardRepository
	gateway payment.Gateway
	events  OrderEventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	uow repositories.UnitOfWork,
	orders repositories.OrderRepository,
	cards repositories.PaymentCardRepository,
	gateway payment.Gateway,
	events OrderEventPublisher,
) *OrderService {
	return &OrderService{
		uow:     uow,
		orders:  orders,
		cards:   cards,
		gateway: gateway,
		events:  events,
	}
}

// CreateOrder places an order for a user.
//
// The first transaction reserves stock for every line item and persists the
// order with its initial PENDING_PAYMENT history row. The gateway charge
// happens outside any transaction so a slow gateway never holds row locks; a
// second transaction then finalizes the payment outcome (restoring stock on
// failure).
//
// The two phases are not atomic: a crash between them leaves the order in
// PENDING_PAYMENT with stock reserved, recoverable only through
// UpdatePaymentStatus. There is no reconciliation sweep.
func (s *OrderService) CreateOrder(userID uint, req CreateOrderRequest) (*models.Order, error) {
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if len(req.Items) == 0 {
		return nil, &ValidationError{Message: "at least one order item is required"}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("quantity must be positive for product %d", item.ProductID)}
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	// The caller supplies the totals; the invariant is still enforced here
	// so an inconsistent order can never be persisted.
	order := &models.Order{
		OrderID:            models.NewOrderID(),
		UserID:             userID,
		OrderDate:          time.Now().UTC(),
		OrderStatus:        models.OrderStatusPendingPayment,
		SubtotalAmount:     req.SubtotalAmount,
		DiscountAmount:     req.DiscountAmount,
		TaxAmount:          req.TaxAmount,
		ShippingAmount:     req.ShippingAmount,
		TotalAmount:        req.TotalAmount,
		Currency:           currency,
		PaymentMethod:      method,
		PaymentStatus:      models.PaymentStatusPending,
		ShippingAddressID:  req.ShippingAddressID,
		BillingAddressID:   req.BillingAddressID,
		ShippingMethodName: req.ShippingMethodName,
		CustomerNotes:      req.CustomerNotes,
	}
	if !order.TotalsConsistent() {
		return nil, &ValidationError{Message: "total_amount does not equal subtotal - discount + tax + shipping"}
	}

	var card *models.PaymentCard
	if method.RequiresCard() {
		if req.PaymentCardID == 0 {
			return nil, &ValidationError{Message: "payment_card_id is required for card payments"}
		}
		card, err = s.cards.FindActiveCard(req.PaymentCardID, userID)
		if err != nil {
			if err == repositories.ErrCardNotFound {
				return nil, &InvalidPaymentCardError{CardID: req.PaymentCardID}
			}
			return nil, fmt.Errorf("failed to look up payment card: %w", err)
		}
	}

	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:             item.ProductID,
			MerchantID:            item.MerchantID,
			ProductNameAtPurchase: item.ProductNameAtPurchase,
			SKUAtPurchase:         item.SKUAtPurchase,
			Quantity:              item.Quantity,
			UnitPriceAtPurchase:   item.UnitPriceAtPurchase,
			ItemSubtotalAmount:    item.ItemSubtotalAmount,
			FinalPriceForItem:     item.FinalPriceForItem,
		})
	}
	order.StatusHistory = []models.OrderStatusHistory{{
		Status:          models.OrderStatusPendingPayment,
		ChangedAt:       time.Now().UTC(),
		ChangedByUserID: &userID,
		Notes:           "Order created",
	}}

	// Transaction one: reserve stock and persist the order as a unit. Any
	// reservation failure rolls everything back, so no partial decrement
	// ever survives.
	err = s.uow.Do(func(repos repositories.RepositorySet) error {
		for _, item := range order.Items {
			if err := repos.Stock().Reserve(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repos.Orders().Create(order); err != nil {
			return err
		}
		if card != nil {
			card.TouchLastUsed()
			if err := repos.Cards().Save(card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.created", order)

	if method.RequiresCharge() {
		result, chargeErr := s.gateway.Charge(payment.ChargeRequest{
			Card:     card,
			Amount:   order.TotalAmount,
			Currency: order.Currency,
		})

		if chargeErr == nil && result.Success {
			note := fmt.Sprintf("Payment successful via %s ending in %s", card.CardBrand, card.LastFourDigits)
			if err := s.finalizePayment(order, true, result.TransactionID, note); err != nil {
				return nil, fmt.Errorf("failed to finalize successful payment for order %s: %w", order.OrderID, err)
			}
		} else {
			note := fmt.Sprintf("Payment failed via %s ending in %s", card.CardBrand, card.LastFourDigits)
			if err := s.finalizePayment(order, false, "", note); err != nil {
				return nil, fmt.Errorf("failed to finalize failed payment for order %s: %w", order.OrderID, err)
			}
			s.publishEvent("order.payment_failed", order)
			if chargeErr != nil {
				reloaded, _ := s.orders.GetByID(order.OrderID)
				if reloaded == nil {
					reloaded = order
				}
				return reloaded, &PaymentProcessingError{OrderID: order.OrderID, Err: chargeErr}
			}
		}
	}

	return s.reload(order.OrderID)
}

// finalizePayment records the gateway outcome in one atomic transaction:
// status fields, exactly one system history row, and — on failure — full
// stock restoration.
func (s *OrderService) finalizePayment(order *models.Order, success bool, transactionID, note string) error {
	return s.uow.Do(func(repos repositories.RepositorySet) error {
		if success {
			order.PaymentStatus = models.PaymentStatusSuccessful
			order.OrderStatus = models.OrderStatusProcessing
			order.PaymentGatewayTransactionID = transactionID
		} else {
			order.PaymentStatus = models.PaymentStatusFailed
			order.OrderStatus = models.OrderStatusPaymentFailed
		}
		order.PaymentGatewayName = s.gateway.Name()

		if err := repos.Orders().Save(order); err != nil {
			return err
		}
		if err := repos.Orders().AppendHistory(&models.OrderStatusHistory{
			OrderID:   order.OrderID,
			Status:    order.OrderStatus,
			ChangedAt: time.Now().UTC(),
			Notes:     note,
		}); err != nil {
			return err
		}
		if !success {
			for _, item := range order.Items {
				if item.ProductID == 0 {
					continue
				}
				if err := repos.Stock().Restore(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetOrder retrieves a single order with its items and history.
func (s *OrderService) GetOrder(orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, err
	}
	return order, nil
}

// GetUserOrders lists a user's orders newest first, optionally filtered by
// order status.
func (s *OrderService) GetUserOrders(userID uint, page, perPage int, status string) (*models.OrderPage, error) {
	statusFilter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(userID, page, perPage, statusFilter)
}

// GetAllOrders lists all orders, optionally filtered by status and merchant.
func (s *OrderService) GetAllOrders(page, perPage int, status string, merchantID *uint) (*models.OrderPage, error) {
	statusFilter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.orders.List(page, perPage, statusFilter, merchantID)
}

// UpdateOrderStatus applies an operator-driven transition (SHIPPED,
// DELIVERED, COMPLETED, CANCELLED). Transitions outside the table are
// rejected; a cancelling transition restores stock when the order still
// holds its reservation.
func (s *OrderService) UpdateOrderStatus(orderID, newStatus string, userID uint, notes string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(next) {
		return nil, &InvalidStateTransitionError{OrderID: orderID, From: order.OrderStatus, To: next}
	}

	restock := next == models.OrderStatusCancelled && order.OrderStatus.RestocksOnCancel()

	err = s.uow.Do(func(repos repositories.RepositorySet) error {
		order.OrderStatus = next
		if err := repos.Orders().Save(order); err != nil {
			return err
		}
		if err := repos.Orders().AppendHistory(&models.OrderStatusHistory{
			OrderID:         orderID,
			Status:          next,
			ChangedAt:       time.Now().UTC(),
			ChangedByUserID: &userID,
			Notes:           notes,
		}); err != nil {
			return err
		}
		if restock {
			return restoreOrderStock(repos.Stock(), order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.status_updated", order)
	return s.reload(orderID)
}

// UpdatePaymentStatus handles asynchronous gateway callbacks. A SUCCESSFUL
// payment forces the order into PROCESSING, re-reserving stock first when
// the order had fallen to PAYMENT_FAILED; a FAILED one forces
// PAYMENT_FAILED and, if the order was still awaiting payment, restores its
// stock. The whole update is one atomic transaction, so the order holds its
// reservation exactly when it is in a pre-shipment non-failed state.
func (s *OrderService) UpdatePaymentStatus(orderID, paymentStatus, transactionID, gatewayName string) (*models.Order, error) {
	status, err := models.ParsePaymentStatus(paymentStatus)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	gateway := gatewayName
	if gateway == "" {
		gateway = "payment gateway"
	}

	err = s.uow.Do(func(repos repositories.RepositorySet) error {
		order.PaymentStatus = status
		if transactionID != "" {
			order.PaymentGatewayTransactionID = transactionID
		}
		if gatewayName != "" {
			order.PaymentGatewayName = gatewayName
		}

		history := models.OrderStatusHistory{
			OrderID:   orderID,
			ChangedAt: time.Now().UTC(),
		}

		switch status {
		case models.PaymentStatusSuccessful:
			// A PAYMENT_FAILED order already had its stock restored, so a
			// late successful callback must win the reservation back before
			// the order re-enters PROCESSING. If the stock is gone, the
			// whole update rolls back and the order stays PAYMENT_FAILED.
			if order.OrderStatus == models.OrderStatusPaymentFailed {
				for _, item := range order.Items {
					if item.ProductID == 0 {
						continue
					}
					if err := repos.Stock().Reserve(item.ProductID, item.Quantity); err != nil {
						return err
					}
				}
			}
			order.OrderStatus = models.OrderStatusProcessing
			history.Status = models.OrderStatusProcessing
			history.Notes = fmt.Sprintf("Payment received via %s, order moved to processing", gateway)
		case models.PaymentStatusFailed:
			wasPending := order.OrderStatus == models.OrderStatusPendingPayment
			order.OrderStatus = models.OrderStatusPaymentFailed
			history.Status = models.OrderStatusPaymentFailed
			history.Notes = fmt.Sprintf("Payment failed via %s", gateway)
			if wasPending {
				if err := restoreOrderStock(repos.Stock(), order); err != nil {
					return err
				}
			}
		default:
			history.Status = order.OrderStatus
			history.Notes = fmt.Sprintf("Payment status changed to %s via %s", status, gateway)
		}

		if err := repos.Orders().Save(order); err != nil {
			return err
		}
		return repos.Orders().AppendHistory(&history)
	})
	if err != nil {
		return nil, err
	}

	if status == models.PaymentStatusFailed {
		s.publishEvent("order.payment_failed", order)
	} else {
		s.publishEvent("order.status_updated", order)
	}
	return s.reload(orderID)
}

// CancelOrder cancels an order on behalf of a user, restoring every item's
// reserved stock when the order still holds it. COMPLETED and CANCELLED
// orders cannot be cancelled.
func (s *OrderService) CancelOrder(orderID string, userID uint, notes string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == models.OrderStatusCompleted || order.OrderStatus == models.OrderStatusCancelled {
		return nil, &InvalidStateTransitionError{OrderID: orderID, From: order.OrderStatus, To: models.OrderStatusCancelled}
	}

	if notes == "" {
		notes = "Order cancelled by user"
	}
	restock := order.OrderStatus.RestocksOnCancel()

	err = s.uow.Do(func(repos repositories.RepositorySet) error {
		order.OrderStatus = models.OrderStatusCancelled
		if err := repos.Orders().Save(order); err != nil {
			return err
		}
		if err := repos.Orders().AppendHistory(&models.OrderStatusHistory{
			OrderID:         orderID,
			Status:          models.OrderStatusCancelled,
			ChangedAt:       time.Now().UTC(),
			ChangedByUserID: &userID,
			Notes:           notes,
		}); err != nil {
			return err
		}
		if restock {
			return restoreOrderStock(repos.Stock(), order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.cancelled", order)
	return s.reload(orderID)
}

func restoreOrderStock(stock repositories.StockRepository, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == 0 {
			continue
		}
		if err := stock.Restore(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func parseStatusFilter(status string) (*models.OrderStatus, error) {
	if status == "" {
		return nil, nil
	}
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return &parsed, nil
}

func (s *OrderService) reload(orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", orderID, err)
	}
	return order, nil
}

// publishEvent marshals and publishes an order lifecycle event. Publishing
// is best effort: failures are logged, never propagated.
func (s *OrderService) publishEvent(routingKey string, order *models.Order) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"order_id":       order.OrderID,
		"user_id":        order.UserID,
		"order_status":   order.OrderStatus,
		"payment_status": order.PaymentStatus,
		"total_amount":   order.TotalAmount,
		"currency":       order.Currency,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", routingKey, order.OrderID, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", routingKey, order.OrderID, err)
	}
}
