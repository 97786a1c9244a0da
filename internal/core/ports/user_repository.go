package ports

import (
	"context"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create fails with domain.ErrUserExists on a duplicate username or email.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByLogin matches either the email or the username.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// AddressRepository defines persistence operations for saved addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.Address) error
	FindByID(ctx context.Context, id string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Address, error)
	Update(ctx context.Context, a *domain.Address) error
}

// SupplierRepository defines persistence operations for suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *domain.Supplier) error
	FindByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
	Update(ctx context.Context, s *domain.Supplier) error
}
