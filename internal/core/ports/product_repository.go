package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// ProductPatch carries a partial product update. Nil fields are left untouched.
// Quantity is deliberately absent: only reservations move stock.
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	Category    *string
	Brand       *string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.Category == nil && p.Brand == nil
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	UpdateFields(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	SetStatus(ctx context.Context, id string, status domain.RecordStatus) (*domain.Product, error)

	// AdjustQuantity applies quantity += delta as a single conditional update
	// and returns the updated product. A negative delta that would take the
	// quantity below zero fails with domain.ErrInsufficientStock and leaves
	// the record unmodified.
	AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Product, error)
}
