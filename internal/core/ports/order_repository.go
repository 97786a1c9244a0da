package ports

import (
	"context"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// OrderFilter narrows List. Empty fields are ignored.
type OrderFilter struct {
	UserID   string
	Assigned string
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// Update stores o only if the stored version still equals o.Version and
	// bumps o.Version on success. A stale version yields domain.ErrConcurrentUpdate.
	Update(ctx context.Context, o *domain.Order) error
}

// SaleRepository defines persistence operations for sales.
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) error
	FindByID(ctx context.Context, id string) (*domain.Sale, error)
	List(ctx context.Context) ([]*domain.Sale, error)
	// Update follows the same versioning contract as OrderRepository.Update.
	Update(ctx context.Context, s *domain.Sale) error
}
