package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user-facing order routes. These require
// authentication; the user id comes from the JWT claims.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetUserOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers the cross-user listing route.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/admin/orders", h.HandleGetAllOrders)
}

// RegisterWebhookRoutes registers the public payment-gateway callback.
func (h *OrderHandler) RegisterWebhookRoutes(router fiber.Router) {
	router.Post("/payments/webhook", h.HandlePaymentWebhook)
}

// HandleCreateOrder creates a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	order, err := h.service.CreateOrder(userID, req)
	if err != nil {
		log.Printf("Error creating order for user %d: %v", userID, err)
		return orderErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder retrieves a single order by its ID. Customers may only see
// their own orders; admins see everything.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	order, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return orderErrorResponse(c, err)
	}
	if order.UserID != userID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this order",
		})
	}
	return c.JSON(order)
}

// HandleGetUserOrders lists the authenticated user's orders.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 10)
	status := c.Query("status")

	pageResult, err := h.service.GetUserOrders(userID, page, perPage, status)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(pageResult)
}

// HandleGetAllOrders lists all orders with optional status/merchant filters.
// Admin only.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Admin access required",
		})
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 10)
	status := c.Query("status")

	var merchantID *uint
	if raw := c.Query("merchant_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "merchant_id must be a positive integer",
			})
		}
		mid := uint(id)
		merchantID = &mid
	}

	pageResult, err := h.service.GetAllOrders(page, perPage, status, merchantID)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(pageResult)
}

// HandleUpdateOrderStatus applies an operator-driven status transition.
// Admin only: customers cancel through the cancel endpoint instead.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Admin access required",
		})
	}

	var req struct {
		Status string `json:"status" validate:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status, userID, req.Notes)
	if err != nil {
		log.Printf("Error updating status of order %s: %v", c.Params("id"), err)
		return orderErrorResponse(c, err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order on behalf of the authenticated user.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	existing, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return orderErrorResponse(c, err)
	}
	if existing.UserID != userID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this order",
		})
	}

	var req struct {
		Notes string `json:"notes"`
	}
	// A body is optional for cancellation.
	_ = c.BodyParser(&req)

	order, err := h.service.CancelOrder(c.Params("id"), userID, req.Notes)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", c.Params("id"), err)
		return orderErrorResponse(c, err)
	}
	return c.JSON(order)
}

// HandlePaymentWebhook applies an asynchronous payment-status callback from
// the gateway.
func (h *OrderHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	var req struct {
		OrderID       string `json:"order_id" validate:"required"`
		PaymentStatus string `json:"payment_status" validate:"required"`
		TransactionID string `json:"transaction_id"`
		GatewayName   string `json:"gateway_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.OrderID == "" || req.PaymentStatus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "order_id and payment_status are required.",
		})
	}

	order, err := h.service.UpdatePaymentStatus(req.OrderID, req.PaymentStatus, req.TransactionID, req.GatewayName)
	if err != nil {
		log.Printf("Error applying payment webhook for order %s: %v", req.OrderID, err)
		return orderErrorResponse(c, err)
	}
	return c.JSON(order)
}

// currentUserID pulls the authenticated user id set by the JWT middleware.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return 0, errMissingUser
	}
	return userID, nil
}

var errMissingUser = errors.New("authentication required")

// isAdmin reports whether the JWT carried the admin role.
func isAdmin(c *fiber.Ctx) bool {
	role, ok := c.Locals("role").(string)
	return ok && role == string(models.RoleAdmin)
}

// orderErrorResponse maps the service error taxonomy onto HTTP statuses:
// business-rule violations are 4xx, gateway faults 502, everything else 500.
func orderErrorResponse(c *fiber.Ctx, err error) error {
	var (
		validationErr   *services.ValidationError
		invalidCardErr  *services.InvalidPaymentCardError
		notFoundErr     *services.OrderNotFoundError
		transitionErr   *services.InvalidStateTransitionError
		insufficientErr *repositories.InsufficientStockError
		paymentErr      *services.PaymentProcessingError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &invalidCardErr),
		errors.As(err, &transitionErr),
		errors.As(err, &insufficientErr),
		errors.Is(err, repositories.ErrStockNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Order request rejected",
			"error":   err.Error(),
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
			"error":   err.Error(),
		})
	case errors.As(err, &paymentErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Payment processing failed",
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
