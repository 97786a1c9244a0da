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

type SupplierService struct {
	repo   ports.SupplierRepository
	logger zerolog.Logger
}

func NewSupplierService(repo ports.SupplierRepository, logger zerolog.Logger) *SupplierService {
	return &SupplierService{repo: repo, logger: logger}
}

func applySupplier(dst *domain.Supplier, in ports.SupplierInput) {
	if in.Name != nil {
		dst.Name = *in.Name
	}
	if in.ContactName != nil {
		dst.ContactName = *in.ContactName
	}
	if in.Email != nil {
		dst.Email = *in.Email
	}
	if in.Phone != nil {
		dst.Phone = *in.Phone
	}
	if in.DocumentNumber != nil {
		dst.DocumentNumber = *in.DocumentNumber
	}
	if in.Address != nil {
		dst.Address = *in.Address
	}
}

func (s *SupplierService) CreateSupplier(ctx context.Context, input ports.SupplierInput) (*domain.Supplier, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	now := time.Now().UTC()
	sup := &domain.Supplier{Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now}
	applySupplier(sup, input)
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	s.logger.Info().Str("supplier_id", sup.ID).Msg("supplier created")
	return sup, nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	return s.repo.List(ctx)
}

func (s *SupplierService) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, id string, input ports.SupplierInput) (*domain.Supplier, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplier(sup, input)
	sup.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *SupplierService) SetSupplierStatus(ctx context.Context, id, status string) (*domain.Supplier, error) {
	st, err := domain.ParseRecordStatus(status)
	if err != nil {
		return nil, err
	}
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sup.Status = st
	sup.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	s.logger.Info().Str("supplier_id", id).Str("status", string(st)).Msg("supplier status changed")
	return sup, nil
}
