package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// CatalogService manages products. It never changes quantity after creation.
type CatalogService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		Quantity:    input.Quantity,
		Brand:       input.Brand,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Int("quantity", p.Quantity).Msg("product created")
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProduct applies a partial update. An empty patch returns the current record.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if patch.Empty() {
		return s.repo.FindByID(ctx, id)
	}

	p, err := s.repo.UpdateFields(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

func (s *CatalogService) SetProductStatus(ctx context.Context, id string, status string) (*domain.Product, error) {
	st, err := domain.ParseRecordStatus(status)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.SetStatus(ctx, id, st)
	if err != nil {
		return nil, fmt.Errorf("set product status: %w", err)
	}
	s.logger.Info().Str("product_id", id).Str("status", string(st)).Msg("product status changed")
	return p, nil
}
