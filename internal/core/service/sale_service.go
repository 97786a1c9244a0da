package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

const saleIdempotencyScope = "sales"

// SaleService runs point-of-sale transactions against the catalog.
type SaleService struct {
	sales    ports.SaleRepository
	products ports.ProductRepository
	tx       ports.TxManager
	idem     ports.IdempotencyStore
	events   ports.EventSink
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSaleService wires the sale lifecycle. idem and events may be nil.
func NewSaleService(
	sales ports.SaleRepository,
	products ports.ProductRepository,
	tx ports.TxManager,
	idem ports.IdempotencyStore,
	events ports.EventSink,
	logger zerolog.Logger,
) *SaleService {
	return &SaleService{
		sales:    sales,
		products: products,
		tx:       tx,
		idem:     idem,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSale stores an active sale and decrements stock in one transaction.
// Line prices come from the catalog and the total is computed here.
func (s *SaleService) CreateSale(ctx context.Context, input ports.CreateSaleInput) (*domain.Sale, error) {
	if strings.TrimSpace(input.DocumentNumber) == "" {
		return nil, fmt.Errorf("%w: document_number is required", domain.ErrValidation)
	}
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := validateLines(input.Items); err != nil {
		return nil, err
	}

	return idempotent(ctx, s.idem, s.logger, saleIdempotencyScope, input.IdempotencyKey,
		s.sales.FindByID,
		func(ctx context.Context) (*domain.Sale, string, error) {
			sale, err := s.createSale(ctx, input, method)
			if err != nil {
				return nil, "", err
			}
			return sale, sale.ID, nil
		})
}

func (s *SaleService) createSale(ctx context.Context, input ports.CreateSaleInput, method domain.PaymentMethod) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items, err := reserveItems(ctx, s.products, input.Items)
		if err != nil {
			return err
		}
		now := s.now()
		sale = &domain.Sale{
			Items:          items,
			DocumentNumber: input.DocumentNumber,
			Total:          domain.LinesTotal(items),
			PaymentMethod:  method,
			Status:         domain.StatusActive,
			CashierID:      input.CashierID,
			SoldAt:         now,
			UpdatedAt:      now,
			Version:        1,
		}
		return s.sales.Create(ctx, sale)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("document_number", input.DocumentNumber).Msg("sale creation aborted")
		return nil, fmt.Errorf("create sale: %w", err)
	}

	s.logger.Info().Str("sale_id", sale.ID).Str("total", sale.Total.String()).Msg("sale created")
	s.publish(domain.EventSaleCreated, sale.ID, movements(sale.Items, -1))
	return sale, nil
}

// DeactivateSale restores the stock recorded on the stored sale and marks it
// inactive.
func (s *SaleService) DeactivateSale(ctx context.Context, id string) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.sales.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if sl.Status == domain.StatusInactive {
			return domain.ErrSaleAlreadyInactive
		}
		if err := restoreItems(ctx, s.products, sl.Items); err != nil {
			return err
		}
		sl.Status = domain.StatusInactive
		sl.UpdatedAt = s.now()
		if err := s.sales.Update(ctx, sl); err != nil {
			return err
		}
		sale = sl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deactivate sale: %w", err)
	}

	s.logger.Info().Str("sale_id", id).Msg("sale deactivated")
	s.publish(domain.EventSaleDeactivated, sale.ID, movements(sale.Items, 1))
	return sale, nil
}

// SetStatus accepts active or inactive. Deactivation restores stock; a sale
// is never reactivated.
func (s *SaleService) SetStatus(ctx context.Context, id, status string) (*domain.Sale, error) {
	st, err := domain.ParseRecordStatus(status)
	if err != nil {
		return nil, err
	}
	if st == domain.StatusInactive {
		return s.DeactivateSale(ctx, id)
	}

	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set sale status: %w", err)
	}
	if sale.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: an inactive sale cannot be reactivated", domain.ErrInvalidTransition)
	}
	return sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.sales.FindByID(ctx, id)
}

func (s *SaleService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	return s.sales.List(ctx)
}

func (s *SaleService) publish(t domain.EventType, aggregateID string, moves []domain.StockMovement) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(domain.Event{
		ID:          uuid.NewString(),
		Type:        t,
		AggregateID: aggregateID,
		OccurredAt:  s.now(),
		Movements:   moves,
	})
}
