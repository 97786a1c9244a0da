package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

const validOrderBody = `{
	"user_id": "u1",
	"address": "Calle 10 #4-22",
	"name": "Ana",
	"email": "ana@example.com",
	"phone": "3001234567",
	"payment_method": "cash",
	"items": [{"product_id": "p1", "quantity": 2}]
}`

func TestOrderHandler_Create(t *testing.T) {
	stub := &stubOrderService{
		createFn: func(_ context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
			if in.IdempotencyKey != "retry-1" {
				t.Fatalf("idempotency key not forwarded: %q", in.IdempotencyKey)
			}
			if len(in.Items) != 1 || in.Items[0].ProductID != "p1" || in.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items: %+v", in.Items)
			}
			return &domain.Order{ID: "o1", Status: domain.OrderPending, Total: decimal.NewFromInt(4500)}, nil
		},
	}
	h := NewOrderHandler(stub)

	c, rec := newContext(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	c.Request().Header.Set(HeaderIdempotencyKey, "retry-1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != "4500" || resp["status"] != "pending" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestOrderHandler_Create_DefaultsOwnerToToken(t *testing.T) {
	stub := &stubOrderService{
		createFn: func(_ context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
			if in.UserID != "from-token" {
				t.Fatalf("expected owner from token, got %q", in.UserID)
			}
			return &domain.Order{ID: "o1"}, nil
		},
	}
	h := NewOrderHandler(stub)

	body := strings.Replace(validOrderBody, `"user_id": "u1",`, "", 1)
	c, _ := newContext(http.MethodPost, "/orders", strings.NewReader(body))
	c.Set(CtxUserID, "from-token")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{})

	body := `{"address":"x","name":"n","email":"bad","phone":"1","payment_method":"cash","items":[{"product_id":"p1","quantity":0}]}`
	c, _ := newContext(http.MethodPost, "/orders", strings.NewReader(body))
	err := h.Create(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "items[0].quantity must be greater than 0") {
		t.Errorf("unexpected message: %v", err)
	}
	if !strings.Contains(err.Error(), "email must be a valid email") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestOrderHandler_Create_InsufficientStock(t *testing.T) {
	stub := &stubOrderService{
		createFn: func(context.Context, ports.CreateOrderInput) (*domain.Order, error) {
			return nil, domain.ErrInsufficientStock
		},
	}
	h := NewOrderHandler(stub)

	c, _ := newContext(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	if err := h.Create(c); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestOrderHandler_List(t *testing.T) {
	stub := &stubOrderService{
		listByUserFn: func(_ context.Context, userID string) ([]*domain.Order, error) {
			if userID == "empty" {
				return nil, domain.ErrOrderNotFound
			}
			return []*domain.Order{{ID: "o1", UserID: userID}}, nil
		},
		listAllFn: func(context.Context) ([]*domain.Order, error) {
			return []*domain.Order{{ID: "o1"}, {ID: "o2"}}, nil
		},
	}
	h := NewOrderHandler(stub)

	c, rec := newContext(http.MethodGet, "/orders", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var all []domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil || len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d (%v)", len(all), err)
	}

	c, _ = newContext(http.MethodGet, "/orders?usuarioId=empty", nil)
	if err := h.List(c); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderHandler_SetStatus(t *testing.T) {
	stub := &stubOrderService{
		setStatusFn: func(_ context.Context, id, status string) (*domain.Order, error) {
			if status == "delivered" {
				return nil, domain.ErrInvalidTransition
			}
			return &domain.Order{ID: id, Status: domain.OrderStatus(status)}, nil
		},
	}
	h := NewOrderHandler(stub)

	c, rec := newContext(http.MethodPatch, "/orders/estadoPedido/o1", strings.NewReader(`{"estadoPedido":"preparing"}`))
	c.SetParamNames("id")
	c.SetParamValues("o1")
	if err := h.SetStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"preparing"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodPatch, "/orders/estadoPedido/o1", strings.NewReader(`{"estadoPedido":"delivered"}`))
	c.SetParamNames("id")
	c.SetParamValues("o1")
	if err := h.SetStatus(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderHandler_AssignAndCancel(t *testing.T) {
	stub := &stubOrderService{
		assignFn: func(_ context.Context, orderID, userID string) (*domain.Order, error) {
			if userID != "agent-1" {
				return nil, domain.ErrInvalidAssignment
			}
			return &domain.Order{ID: orderID, Assigned: userID}, nil
		},
		cancelFn: func(context.Context, string) (*domain.Order, error) {
			return nil, domain.ErrOrderAlreadyCancelled
		},
	}
	h := NewOrderHandler(stub)

	c, rec := newContext(http.MethodPut, "/orders/o1", strings.NewReader(`{"assigned":"agent-1"}`))
	c.SetParamNames("id")
	c.SetParamValues("o1")
	if err := h.Assign(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"assigned":"agent-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodPut, "/orders/o1", strings.NewReader(`{"assigned":"cashier-9"}`))
	if err := h.Assign(c); !errors.Is(err, domain.ErrInvalidAssignment) {
		t.Fatalf("expected ErrInvalidAssignment, got %v", err)
	}

	c, _ = newContext(http.MethodPut, "/orders/o1/cancel", nil)
	if err := h.Cancel(c); !errors.Is(err, domain.ErrOrderAlreadyCancelled) {
		t.Fatalf("expected ErrOrderAlreadyCancelled, got %v", err)
	}
}

func TestOrderHandler_Create_CustomerCannotOrderForOthers(t *testing.T) {
	var owner string
	stub := &stubOrderService{
		createFn: func(_ context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
			owner = in.UserID
			return &domain.Order{ID: "o1", UserID: in.UserID}, nil
		},
	}
	h := NewOrderHandler(stub)

	// validOrderBody names user "u1".
	c, _ := newContext(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	c.Set(CtxUserID, "customer-7")
	c.Set(CtxRole, string(domain.RoleCustomer))
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if owner != "customer-7" {
		t.Fatalf("expected owner forced to token subject, got %q", owner)
	}

	c, _ = newContext(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	c.Set(CtxUserID, "admin-1")
	c.Set(CtxRole, string(domain.RoleAdministrator))
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if owner != "u1" {
		t.Fatalf("expected administrator to order for u1, got %q", owner)
	}
}

func TestOrderHandler_List_ScopedToCaller(t *testing.T) {
	var listedFor string
	stub := &stubOrderService{
		listByUserFn: func(_ context.Context, userID string) ([]*domain.Order, error) {
			listedFor = userID
			return []*domain.Order{{ID: "o1", UserID: userID}}, nil
		},
		listAllFn: func(context.Context) ([]*domain.Order, error) {
			t.Fatal("customer must not list every order")
			return nil, nil
		},
	}
	h := NewOrderHandler(stub)

	c, _ := newContext(http.MethodGet, "/orders", nil)
	c.Set(CtxUserID, "customer-7")
	c.Set(CtxRole, string(domain.RoleCustomer))
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if listedFor != "customer-7" {
		t.Fatalf("expected listing for the caller, got %q", listedFor)
	}

	c, _ = newContext(http.MethodGet, "/orders?usuarioId=someone-else", nil)
	c.Set(CtxUserID, "customer-7")
	c.Set(CtxRole, string(domain.RoleCustomer))
	if err := h.List(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOrderHandler_Cancel_RequiresOwnership(t *testing.T) {
	cancelled := 0
	stub := &stubOrderService{
		getFn: func(_ context.Context, id string) (*domain.Order, error) {
			return &domain.Order{ID: id, UserID: "customer-7"}, nil
		},
		cancelFn: func(_ context.Context, id string) (*domain.Order, error) {
			cancelled++
			return &domain.Order{ID: id, Status: domain.OrderCancelled}, nil
		},
	}
	h := NewOrderHandler(stub)

	cases := []struct {
		name    string
		userID  string
		role    domain.Role
		wantErr error
	}{
		{"owner", "customer-7", domain.RoleCustomer, nil},
		{"other customer", "customer-8", domain.RoleCustomer, domain.ErrForbidden},
		{"administrator", "admin-1", domain.RoleAdministrator, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := cancelled
			c, _ := newContext(http.MethodPut, "/orders/o1/cancel", nil)
			c.SetParamNames("id")
			c.SetParamValues("o1")
			c.Set(CtxUserID, tc.userID)
			c.Set(CtxRole, string(tc.role))

			err := h.Cancel(c)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if cancelled != before {
					t.Fatal("order cancelled despite ownership check")
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if cancelled != before+1 {
				t.Fatal("expected the order to be cancelled")
			}
		})
	}
}

func TestOrderHandler_Get_ForeignOrderForbidden(t *testing.T) {
	stub := &stubOrderService{
		getFn: func(_ context.Context, id string) (*domain.Order, error) {
			return &domain.Order{ID: id, UserID: "customer-7", Assigned: "agent-1"}, nil
		},
	}
	h := NewOrderHandler(stub)

	for _, tc := range []struct {
		userID string
		role   domain.Role
		ok     bool
	}{
		{"customer-7", domain.RoleCustomer, true},
		{"agent-1", domain.RoleDeliveryAgent, true},
		{"customer-8", domain.RoleCustomer, false},
	} {
		c, _ := newContext(http.MethodGet, "/orders/o1", nil)
		c.SetParamNames("id")
		c.SetParamValues("o1")
		c.Set(CtxUserID, tc.userID)
		c.Set(CtxRole, string(tc.role))

		err := h.Get(c)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.userID, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", tc.userID, err)
		}
	}
}
