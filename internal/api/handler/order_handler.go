package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/api/metrics"
	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry creation requests safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler handles HTTP requests for the order lifecycle.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// --- Request types ---

type lineItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	UserID        string            `json:"user_id"`
	Address       string            `json:"address" validate:"required"`
	Name          string            `json:"name" validate:"required"`
	Email         string            `json:"email" validate:"required,email"`
	Phone         string            `json:"phone" validate:"required"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	Items         []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type assignRequest struct {
	Assigned string `json:"assigned" validate:"required"`
}

type orderStatusRequest struct {
	Status string `json:"estadoPedido" validate:"required"`
}

func toLineInputs(items []lineItemRequest) []ports.LineItemInput {
	out := make([]ports.LineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ports.LineItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// reservationFailure classifies catalog rejections for the metrics label.
func reservationFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrProductInactive):
		return "product_inactive"
	}
	return ""
}

// Create handles POST /orders. The owner defaults to the authenticated user;
// only administrators may place an order on behalf of someone else.
//
// @Summary      Create an order
// @Description  Reserves stock for every item and stores the order atomically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string              false  "Client retry key"
// @Param        body             body      createOrderRequest  true   "Order"
// @Success      201              {object}  domain.Order
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if owner, scoped := ownerScope(c); scoped {
		req.UserID = owner
	} else if req.UserID == "" {
		req.UserID = ctxUserID(c)
	}

	order, err := h.service.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		UserID:         req.UserID,
		Address:        req.Address,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PaymentMethod:  req.PaymentMethod,
		Items:          toLineInputs(req.Items),
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		if reason := reservationFailure(err); reason != "" {
			metrics.StockReservationFailuresTotal.WithLabelValues("order", reason).Inc()
		}
		return err
	}

	metrics.OrdersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /orders and GET /orders?usuarioId=.
//
// @Summary      List orders
// @Description  All orders, or the orders of one user (404 when that user has none).
// @Description  Callers other than administrators only see their own orders.
// @Tags         orders
// @Produce      json
// @Param        usuarioId  query     string  false  "Owner user id"
// @Success      200        {array}   domain.Order
// @Failure      404        {object}  map[string]string
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	var (
		orders []*domain.Order
		err    error
	)
	userID := c.QueryParam("usuarioId")
	if owner, scoped := ownerScope(c); scoped {
		if userID != "" && userID != owner {
			return domain.ErrForbidden
		}
		userID = owner
	}
	if userID != "" {
		orders, err = h.service.ListByUser(c.Request().Context(), userID)
	} else {
		orders, err = h.service.ListOrders(c.Request().Context())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if owner, scoped := ownerScope(c); scoped && order.UserID != owner && order.Assigned != owner {
		return domain.ErrForbidden
	}
	return c.JSON(http.StatusOK, order)
}

// authorizeOwner loads the order and rejects callers confined to their own
// orders when it belongs to someone else.
func (h *OrderHandler) authorizeOwner(c echo.Context, id string) error {
	owner, scoped := ownerScope(c)
	if !scoped {
		return nil
	}
	order, err := h.service.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if order.UserID != owner {
		return domain.ErrForbidden
	}
	return nil
}

// Cancel handles PUT /orders/:id/cancel.
//
// @Summary      Cancel an order
// @Description  Restores the stock of every line and marks the order cancelled.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /orders/{id}/cancel [put]
func (h *OrderHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if err := h.authorizeOwner(c, id); err != nil {
		return err
	}
	order, err := h.service.CancelOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.OrdersCancelledTotal.Inc()
	return c.JSON(http.StatusOK, order)
}

// Assign handles PUT /orders/:id with body {"assigned": "<user id>"}.
//
// @Summary      Assign a delivery agent
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Order id"
// @Param        body  body      assignRequest  true  "Delivery agent"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /orders/{id} [put]
func (h *OrderHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.service.AssignAgent(c.Request().Context(), c.Param("id"), req.Assigned)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// SetStatus handles PATCH /orders/estadoPedido/:id.
//
// @Summary      Change order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Order id"
// @Param        body  body      orderStatusRequest  true  "New status"
// @Success      200   {object}  domain.Order
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /orders/estadoPedido/{id} [patch]
func (h *OrderHandler) SetStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderCancelled {
		metrics.OrdersCancelledTotal.Inc()
	}
	metrics.OrderStatusChangesTotal.WithLabelValues(string(order.Status)).Inc()
	return c.JSON(http.StatusOK, order)
}

// ListByAgent handles GET /orders/asignados/:agentId.
//
// @Summary      Orders assigned to a delivery agent
// @Tags         orders
// @Produce      json
// @Param        agentId  path     string  true  "Delivery agent user id"
// @Success      200      {array}  domain.Order
// @Router       /orders/asignados/{agentId} [get]
func (h *OrderHandler) ListByAgent(c echo.Context) error {
	orders, err := h.service.ListByAgent(c.Request().Context(), c.Param("agentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}
