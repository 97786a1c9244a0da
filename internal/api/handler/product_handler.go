package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service ports.CatalogService
}

func NewProductHandler(service ports.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

type createProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      422   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.CreateProduct(c.Request().Context(), ports.CreateProductInput{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {array}  domain.Product
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /products/:id. Quantity cannot be patched.
//
// @Summary      Update product fields
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), ports.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// SetStatus handles PATCH /products/:id/status.
//
// @Summary      Activate or deactivate a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Product id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.Product
// @Router       /products/{id}/status [patch]
func (h *ProductHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.SetProductStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
