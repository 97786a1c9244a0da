package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/api/metrics"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// SaleHandler handles HTTP requests for point-of-sale transactions.
type SaleHandler struct {
	service ports.SaleService
}

func NewSaleHandler(service ports.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

type createSaleRequest struct {
	DocumentNumber string            `json:"document_number" validate:"required"`
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Items          []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Create handles POST /sales. Line prices come from the catalog.
//
// @Summary      Register a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Client retry key"
// @Param        body             body      createSaleRequest  true   "Sale"
// @Success      201              {object}  domain.Sale
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /sales [post]
func (h *SaleHandler) Create(c echo.Context) error {
	var req createSaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sale, err := h.service.CreateSale(c.Request().Context(), ports.CreateSaleInput{
		Items:          toLineInputs(req.Items),
		DocumentNumber: req.DocumentNumber,
		PaymentMethod:  req.PaymentMethod,
		CashierID:      ctxUserID(c),
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		if reason := reservationFailure(err); reason != "" {
			metrics.StockReservationFailuresTotal.WithLabelValues("sale", reason).Inc()
		}
		return err
	}

	metrics.SalesCreatedTotal.WithLabelValues(string(sale.PaymentMethod)).Inc()
	return c.JSON(http.StatusCreated, sale)
}

// List handles GET /sales.
//
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Success      200  {array}  domain.Sale
// @Router       /sales [get]
func (h *SaleHandler) List(c echo.Context) error {
	sales, err := h.service.ListSales(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sales)
}

// Get handles GET /sales/:id.
//
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id   path      string  true  "Sale id"
// @Success      200  {object}  domain.Sale
// @Failure      404  {object}  map[string]string
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c echo.Context) error {
	sale, err := h.service.GetSale(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}

// Deactivate handles PUT /sales/:id/inactivar. Any request body is ignored;
// the stock to restore is read from the stored sale.
//
// @Summary      Deactivate a sale
// @Tags         sales
// @Produce      json
// @Param        id   path      string  true  "Sale id"
// @Success      200  {object}  domain.Sale
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /sales/{id}/inactivar [put]
func (h *SaleHandler) Deactivate(c echo.Context) error {
	sale, err := h.service.DeactivateSale(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.SalesDeactivatedTotal.Inc()
	return c.JSON(http.StatusOK, sale)
}

// SetStatus handles PATCH /sales/:id/status.
//
// @Summary      Change sale status
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Sale id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.Sale
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /sales/{id}/status [patch]
func (h *SaleHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	wasDeactivation := req.Status == "inactive"
	sale, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	if wasDeactivation {
		metrics.SalesDeactivatedTotal.Inc()
	}
	return c.JSON(http.StatusOK, sale)
}
