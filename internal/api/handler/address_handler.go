package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

type AddressHandler struct {
	service ports.AddressService
}

func NewAddressHandler(service ports.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

type addressRequest struct {
	UserID  string `json:"user_id"`
	Address string `json:"address" validate:"required"`
}

// Create handles POST /addresses. The owner defaults to the authenticated user.
//
// @Summary      Save an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        body  body      addressRequest  true  "Address"
// @Success      201   {object}  domain.Address
// @Router       /addresses [post]
func (h *AddressHandler) Create(c echo.Context) error {
	var req addressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.UserID == "" {
		req.UserID = ctxUserID(c)
	}
	a, err := h.service.CreateAddress(c.Request().Context(), req.UserID, req.Address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// ListByUser handles GET /addresses?usuarioId=.
//
// @Summary      List a user's addresses
// @Tags         addresses
// @Produce      json
// @Param        usuarioId  query    string  true  "Owner user id"
// @Success      200        {array}  domain.Address
// @Router       /addresses [get]
func (h *AddressHandler) ListByUser(c echo.Context) error {
	userID := c.QueryParam("usuarioId")
	if userID == "" {
		userID = ctxUserID(c)
	}
	list, err := h.service.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) Get(c echo.Context) error {
	a, err := h.service.GetAddress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHandler) Update(c echo.Context) error {
	var req addressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.service.UpdateAddress(c.Request().Context(), c.Param("id"), req.Address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
