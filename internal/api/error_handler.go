package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// errorResponse is the JSON envelope for every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor lists domain errors in match order. The message of a matched
// error is rendered as-is, so wrapped detail (e.g. the failing field) reaches
// the client.
var statusFor = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusUnprocessableEntity},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},

	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrSaleNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrAddressNotFound, http.StatusNotFound},
	{domain.ErrSupplierNotFound, http.StatusNotFound},

	{domain.ErrInsufficientStock, http.StatusConflict},
	{domain.ErrProductInactive, http.StatusConflict},
	{domain.ErrOrderAlreadyCancelled, http.StatusConflict},
	{domain.ErrSaleAlreadyInactive, http.StatusConflict},
	{domain.ErrConcurrentUpdate, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrIdempotencyInFlight, http.StatusConflict},

	{domain.ErrInvalidAssignment, http.StatusBadRequest},
	{domain.ErrInvalidRecoveryCode, http.StatusBadRequest},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrAccountInactive, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},
}

// NewHTTPErrorHandler maps domain errors to status codes and renders
// {"error": "<message>"}. Unknown errors are logged and answered with 500
// without leaking their cause.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Bind failures, unknown routes and middleware rejections.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			return m.status, err.Error()
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
