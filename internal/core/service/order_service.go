package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

const orderIdempotencyScope = "orders"

// OrderService runs the order lifecycle. Every operation that moves stock
// runs inside a single storage transaction together with the order write.
type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.UserRepository
	tx       ports.TxManager
	idem     ports.IdempotencyStore
	events   ports.EventSink
	logger   zerolog.Logger
	now      func() time.Time
}

// NewOrderService wires the order lifecycle. idem and events may be nil.
func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
	tx ports.TxManager,
	idem ports.IdempotencyStore,
	events ports.EventSink,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		tx:       tx,
		idem:     idem,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateOrderInput(in ports.CreateOrderInput) error {
	required := []struct{ field, value string }{
		{"user_id", in.UserID},
		{"address", in.Address},
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"payment_method", in.PaymentMethod},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, r.field)
		}
	}
	return validateLines(in.Items)
}

// CreateOrder reserves stock for every item and stores the order in one
// transaction. Either the order exists and all its stock is held, or neither.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}
	return idempotent(ctx, s.idem, s.logger, orderIdempotencyScope, input.IdempotencyKey,
		s.orders.FindByID,
		func(ctx context.Context) (*domain.Order, string, error) {
			o, err := s.createOrder(ctx, input)
			if err != nil {
				return nil, "", err
			}
			return o, o.ID, nil
		})
}

func (s *OrderService) createOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items, err := reserveItems(ctx, s.products, input.Items)
		if err != nil {
			return err
		}
		now := s.now()
		order = &domain.Order{
			UserID:        input.UserID,
			Address:       input.Address,
			Name:          input.Name,
			Email:         input.Email,
			Phone:         input.Phone,
			Items:         items,
			PaymentMethod: input.PaymentMethod,
			Status:        domain.OrderPending,
			Active:        domain.StatusActive,
			Total:         domain.LinesTotal(items),
			CreatedAt:     now,
			UpdatedAt:     now,
			Version:       1,
		}
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", input.UserID).Msg("order creation aborted")
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("total", order.Total.String()).
		Msg("order created")
	s.publish(domain.EventOrderCreated, order.ID, movements(order.Items, -1))
	return order, nil
}

// CancelOrder restores the stock of every line and marks the order cancelled
// and inactive. The stock is re-derived from the stored order.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == domain.OrderCancelled {
			return domain.ErrOrderAlreadyCancelled
		}
		if !o.Status.CanTransitionTo(domain.OrderCancelled) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, domain.OrderCancelled)
		}
		if err := restoreItems(ctx, s.products, o.Items); err != nil {
			return err
		}
		o.Status = domain.OrderCancelled
		o.Active = domain.StatusInactive
		o.UpdatedAt = s.now()
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	s.logger.Info().Str("order_id", id).Msg("order cancelled")
	s.publish(domain.EventOrderCancelled, order.ID, movements(order.Items, 1))
	return order, nil
}

// AssignAgent records the delivery agent responsible for an order. The
// assignee must exist and hold the delivery-agent role.
func (s *OrderService) AssignAgent(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: assigned is required", domain.ErrValidation)
	}
	agent, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %s does not exist", domain.ErrInvalidAssignment, userID)
		}
		return nil, fmt.Errorf("assign agent: %w", err)
	}
	if agent.Role != domain.RoleDeliveryAgent {
		return nil, fmt.Errorf("%w: user %s has role %s", domain.ErrInvalidAssignment, userID, agent.Role)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("assign agent: %w", err)
	}
	if o.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrInvalidTransition, o.Status)
	}
	o.Assigned = agent.ID
	o.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("assign agent: %w", err)
	}

	s.logger.Info().Str("order_id", orderID).Str("agent_id", agent.ID).Msg("order assigned")
	return o, nil
}

// SetStatus moves an order along the transition table. Cancellation goes
// through CancelOrder so stock is always restored. Re-applying the current
// status of a non-terminal order is a no-op.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if next == domain.OrderCancelled {
		return s.CancelOrder(ctx, orderID)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	if o.Status == next && !o.Status.IsTerminal() {
		return o, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
	}

	prev := o.Status
	o.Status = next
	o.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	s.logger.Info().Str("order_id", orderID).Str("from", string(prev)).Str("to", string(next)).Msg("order status changed")
	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx, ports.OrderFilter{})
}

// ListByUser returns the orders of one user. No orders is reported as
// ErrOrderNotFound.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx, ports.OrderFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders for user %s", domain.ErrOrderNotFound, userID)
	}
	return orders, nil
}

func (s *OrderService) ListByAgent(ctx context.Context, agentID string) ([]*domain.Order, error) {
	return s.orders.List(ctx, ports.OrderFilter{Assigned: agentID})
}

func (s *OrderService) publish(t domain.EventType, aggregateID string, moves []domain.StockMovement) {
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
