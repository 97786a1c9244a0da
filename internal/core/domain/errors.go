package domain

import "errors"

// ErrValidation is wrapped with the offending field, e.g.
// fmt.Errorf("%w: email is required", ErrValidation).
var ErrValidation = errors.New("validation failed")

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrSupplierNotFound = errors.New("supplier not found")
)

var (
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrProductInactive       = errors.New("product is inactive")
	ErrInvalidAssignment     = errors.New("assignee is not a delivery agent")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrSaleAlreadyInactive   = errors.New("sale already inactive")
	ErrConcurrentUpdate      = errors.New("record was modified concurrently")
	ErrIdempotencyInFlight   = errors.New("a request with this idempotency key is still in progress")
)

var (
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrInvalidRecoveryCode = errors.New("invalid or expired recovery code")
	ErrForbidden           = errors.New("access forbidden")
)
