package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// newContext builds an echo context with the validator installed.
func newContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubUserService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	createFn   func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, login, password string) (string, *domain.User, error)
	recoverFn  func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, email, code, password string) error
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) { return nil, nil }

func (s *stubUserService) GetUser(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) UpdateUser(context.Context, string, ports.UserPatch) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) SetUserStatus(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.recoverFn(ctx, email)
}

func (s *stubUserService) ResetPassword(ctx context.Context, email, code, password string) error {
	return s.resetFn(ctx, email, code, password)
}

type stubOrderService struct {
	createFn     func(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error)
	cancelFn     func(ctx context.Context, id string) (*domain.Order, error)
	assignFn     func(ctx context.Context, orderID, userID string) (*domain.Order, error)
	setStatusFn  func(ctx context.Context, orderID, status string) (*domain.Order, error)
	listByUserFn func(ctx context.Context, userID string) ([]*domain.Order, error)
	listAllFn    func(ctx context.Context) ([]*domain.Order, error)
	getFn        func(ctx context.Context, id string) (*domain.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	return s.createFn(ctx, in)
}

func (s *stubOrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.cancelFn(ctx, id)
}

func (s *stubOrderService) AssignAgent(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return s.assignFn(ctx, orderID, userID)
}

func (s *stubOrderService) SetStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	return s.setStatusFn(ctx, orderID, status)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &domain.Order{ID: id}, nil
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.listAllFn(ctx)
}

func (s *stubOrderService) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.listByUserFn(ctx, userID)
}

func (s *stubOrderService) ListByAgent(context.Context, string) ([]*domain.Order, error) {
	return []*domain.Order{}, nil
}

type stubSaleService struct {
	createFn     func(ctx context.Context, in ports.CreateSaleInput) (*domain.Sale, error)
	deactivateFn func(ctx context.Context, id string) (*domain.Sale, error)
}

func (s *stubSaleService) CreateSale(ctx context.Context, in ports.CreateSaleInput) (*domain.Sale, error) {
	return s.createFn(ctx, in)
}

func (s *stubSaleService) DeactivateSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.deactivateFn(ctx, id)
}

func (s *stubSaleService) SetStatus(ctx context.Context, id, _ string) (*domain.Sale, error) {
	return s.deactivateFn(ctx, id)
}

func (s *stubSaleService) GetSale(context.Context, string) (*domain.Sale, error) {
	return nil, domain.ErrSaleNotFound
}

func (s *stubSaleService) ListSales(context.Context) ([]*domain.Sale, error) { return nil, nil }
