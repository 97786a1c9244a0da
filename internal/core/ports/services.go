package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// CreateProductInput carries all data needed to add a product to the catalog.
type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Category    string
	Brand       string
	Quantity    int
}

// CatalogService defines use-case operations for products.
type CatalogService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	SetProductStatus(ctx context.Context, id string, status string) (*domain.Product, error)
}

// LineItemInput is one requested product and quantity.
type LineItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries the contact, delivery and line data of a new order.
type CreateOrderInput struct {
	UserID         string
	Address        string
	Name           string
	Email          string
	Phone          string
	PaymentMethod  string
	Items          []LineItemInput
	IdempotencyKey string
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	AssignAgent(ctx context.Context, orderID, userID string) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Order, error)
}

// CreateSaleInput carries a point-of-sale transaction.
type CreateSaleInput struct {
	Items          []LineItemInput
	DocumentNumber string
	PaymentMethod  string
	CashierID      string
	IdempotencyKey string
}

// SaleService defines use-case operations for sales.
type SaleService interface {
	CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error)
	DeactivateSale(ctx context.Context, id string) (*domain.Sale, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context) ([]*domain.Sale, error)
}

// RegisterInput carries a new account. Role is only honoured by CreateUser.
type RegisterInput struct {
	Name           string
	Username       string
	Email          string
	Password       string
	Phone          string
	Address        string
	DocumentType   string
	DocumentNumber string
	Role           string
}

// UserPatch carries a partial account update. Nil fields are left untouched.
type UserPatch struct {
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	DocumentType   *string
	DocumentNumber *string
	Role           *string
}

// UserService defines account operations.
type UserService interface {
	// Register is public self-registration and always creates a customer.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	CreateUser(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	SetUserStatus(ctx context.Context, id, status string) (*domain.User, error)
	RequestPasswordRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// AddressService defines operations on saved addresses.
type AddressService interface {
	CreateAddress(ctx context.Context, userID, address string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Address, error)
	GetAddress(ctx context.Context, id string) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id, address string) (*domain.Address, error)
}

// SupplierInput carries supplier fields. On update nil fields are left untouched.
type SupplierInput struct {
	Name           *string
	ContactName    *string
	Email          *string
	Phone          *string
	DocumentNumber *string
	Address        *string
}

// SupplierService defines operations on suppliers.
type SupplierService interface {
	CreateSupplier(ctx context.Context, input SupplierInput) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*domain.Supplier, error)
	SetSupplierStatus(ctx context.Context, id, status string) (*domain.Supplier, error)
}
