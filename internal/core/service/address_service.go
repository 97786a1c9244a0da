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

type AddressService struct {
	repo   ports.AddressRepository
	logger zerolog.Logger
}

func NewAddressService(repo ports.AddressRepository, logger zerolog.Logger) *AddressService {
	return &AddressService{repo: repo, logger: logger}
}

func (s *AddressService) CreateAddress(ctx context.Context, userID, address string) (*domain.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrValidation)
	}
	now := time.Now().UTC()
	a := &domain.Address{Address: address, UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Str("address_id", a.ID).Str("user_id", userID).Msg("address created")
	return a, nil
}

func (s *AddressService) ListByUser(ctx context.Context, userID string) ([]*domain.Address, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: usuarioId is required", domain.ErrValidation)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *AddressService) GetAddress(ctx context.Context, id string) (*domain.Address, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AddressService) UpdateAddress(ctx context.Context, id, address string) (*domain.Address, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrValidation)
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Address = address
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
