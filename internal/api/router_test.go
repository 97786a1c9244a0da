package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/storefront-api/internal/api/handler"
	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

const testSecret = "router-secret"

func bearer(t *testing.T, role domain.Role) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "user-1",
		"username": "tester",
		"role":     string(role),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

// newTestRouter wires no services: the cases below are all answered by
// middleware, validation or the health and metrics endpoints.
func newTestRouter(secret string, checks ...handler.DependencyCheck) *echo.Echo {
	return NewRouter(Deps{
		Logger:         zerolog.Nop(),
		JWTSecret:      secret,
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"https://shop.example.com"},
		Readiness:      checks,
	})
}

func serve(e *echo.Echo, method, target, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccessControl(t *testing.T) {
	e := newTestRouter(testSecret)

	tests := []struct {
		name   string
		method string
		target string
		auth   string
		want   int
	}{
		{"users require a token", http.MethodGet, "/users", "", http.StatusUnauthorized},
		{"users require an administrator", http.MethodGet, "/users", bearer(t, domain.RoleCustomer), http.StatusForbidden},
		{"sales reject customers", http.MethodGet, "/sales", bearer(t, domain.RoleCustomer), http.StatusForbidden},
		{"product writes require an administrator", http.MethodPost, "/products", bearer(t, domain.RoleCashier), http.StatusForbidden},
		{"assignment requires an administrator", http.MethodPut, "/orders/o1", bearer(t, domain.RoleDeliveryAgent), http.StatusForbidden},
		{"status change rejects cashiers", http.MethodPatch, "/orders/estadoPedido/o1", bearer(t, domain.RoleCashier), http.StatusForbidden},
		{"orders require a token", http.MethodGet, "/orders", "", http.StatusUnauthorized},
		{"account creation requires an administrator", http.MethodPost, "/users", bearer(t, domain.RoleCustomer), http.StatusForbidden},
		{"customers cannot list foreign orders", http.MethodGet, "/orders?usuarioId=user-2", bearer(t, domain.RoleCustomer), http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, tt.auth, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRouter_ValidationRunsAfterAuth(t *testing.T) {
	e := newTestRouter(testSecret)

	rec := serve(e, http.MethodPost, "/orders", bearer(t, domain.RoleCustomer), `{"items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "address is required")

	rec = serve(e, http.MethodPost, "/sales", bearer(t, domain.RoleCashier), `{"payment_method":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	e := newTestRouter("", handler.DependencyCheck{
		Name: "mongodb",
		Ping: func(context.Context) error { return nil },
	})

	rec := serve(e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mongodb"`)

	rec = serve(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_orders_created_total")
	assert.Contains(t, rec.Body.String(), "storefront_requests_total")
}

func TestRouter_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		newTestRouter("")
		newTestRouter("")
	})
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", domain.ErrValidation), http.StatusUnprocessableEntity},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{fmt.Errorf("reserve p1: %w", domain.ErrProductNotFound), http.StatusNotFound},
		{domain.ErrOrderNotFound, http.StatusNotFound},
		{domain.ErrSupplierNotFound, http.StatusNotFound},
		{fmt.Errorf("reserve p1: %w", domain.ErrInsufficientStock), http.StatusConflict},
		{domain.ErrOrderAlreadyCancelled, http.StatusConflict},
		{domain.ErrSaleAlreadyInactive, http.StatusConflict},
		{domain.ErrConcurrentUpdate, http.StatusConflict},
		{domain.ErrIdempotencyInFlight, http.StatusConflict},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrInvalidAssignment, http.StatusBadRequest},
		{domain.ErrInvalidRecoveryCode, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrAccountInactive, http.StatusForbidden},
		{domain.ErrForbidden, http.StatusForbidden},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("connection reset by peer"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		code, msg := resolveError(tt.err, zerolog.Nop(), c)
		assert.Equal(t, tt.want, code, tt.err.Error())
		if code == http.StatusInternalServerError {
			assert.Equal(t, "internal server error", msg)
		}
	}
}

func TestResolveError_KeepsFieldDetail(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

	_, msg := resolveError(fmt.Errorf("%w: items[0].quantity must be greater than 0", domain.ErrValidation), zerolog.Nop(), c)
	assert.Contains(t, msg, "items[0].quantity")
}
