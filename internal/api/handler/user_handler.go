package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// UserHandler serves registration, login, recovery and account management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	Name           string `json:"name" validate:"required"`
	Username       string `json:"username" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
}

func (r registerRequest) input() ports.RegisterInput {
	return ports.RegisterInput{
		Name:           r.Name,
		Username:       r.Username,
		Email:          r.Email,
		Password:       r.Password,
		Phone:          r.Phone,
		Address:        r.Address,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
	}
}

// createUserRequest is the administrator variant that picks the role.
type createUserRequest struct {
	registerRequest
	Role string `json:"role" validate:"required,oneof=customer cashier administrator delivery-agent"`
}

// loginRequest accepts either an email or a username in Login.
type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type recoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type updateUserRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	DocumentType   *string `json:"document_type,omitempty"`
	DocumentNumber *string `json:"document_number,omitempty"`
	Role           *string `json:"role,omitempty" validate:"omitempty,oneof=customer cashier administrator delivery-agent"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// Register creates a customer account. Staff accounts are created through
// POST /users.
//
// @Summary      Register a new customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Create handles POST /users.
//
// @Summary      Create a user with any role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account and role"
// @Success      201   {object}  domain.User
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := req.input()
	in.Role = req.Role
	user, err := h.service.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Email or username, and password"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.service.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// RequestRecovery handles POST /auth/recovery. It answers 202 whether or not
// the address is known.
//
// @Summary      Request a password recovery code
// @Tags         auth
// @Accept       json
// @Param        body  body  recoveryRequest  true  "Account email"
// @Success      202
// @Router       /auth/recovery [post]
func (h *UserHandler) RequestRecovery(c echo.Context) error {
	var req recoveryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.RequestPasswordRecovery(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// ResetPassword handles POST /auth/recovery/reset.
//
// @Summary      Reset a password with a recovery code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequest  true  "Code and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/recovery/reset [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(c.Request().Context(), req.Email, req.Code, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password updated"})
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /users/:id.
//
// @Summary      Update user fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UserPatch{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Role:           req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetStatus handles PATCH /users/:id/status.
//
// @Summary      Activate or deactivate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "User id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.User
// @Router       /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.SetUserStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
