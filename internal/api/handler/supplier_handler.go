package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

type SupplierHandler struct {
	service ports.SupplierService
}

func NewSupplierHandler(service ports.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

type supplierRequest struct {
	Name           *string `json:"name,omitempty"`
	ContactName    *string `json:"contact_name,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	DocumentNumber *string `json:"document_number,omitempty"`
	Address        *string `json:"address,omitempty"`
}

func (r supplierRequest) input() ports.SupplierInput {
	return ports.SupplierInput{
		Name:           r.Name,
		ContactName:    r.ContactName,
		Email:          r.Email,
		Phone:          r.Phone,
		DocumentNumber: r.DocumentNumber,
		Address:        r.Address,
	}
}

// Create handles POST /suppliers.
//
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      supplierRequest  true  "Supplier"
// @Success      201   {object}  domain.Supplier
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c echo.Context) error {
	var req supplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.service.CreateSupplier(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *SupplierHandler) List(c echo.Context) error {
	list, err := h.service.ListSuppliers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SupplierHandler) Get(c echo.Context) error {
	s, err := h.service.GetSupplier(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SupplierHandler) Update(c echo.Context) error {
	var req supplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.service.UpdateSupplier(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SupplierHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.service.SetSupplierStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
