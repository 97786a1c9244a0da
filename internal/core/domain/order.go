package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderInTransit OrderStatus = "in-transit"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions defines the allowed state machine transitions. Delivered
// and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderInTransit, OrderCancelled},
	OrderPreparing: {OrderInTransit, OrderCancelled},
	OrderInTransit: {OrderDelivered, OrderCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// ParseOrderStatus maps a raw status string onto the closed enumeration.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderPreparing, OrderInTransit, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// Order is a customer order. Version is bumped on every stored mutation and
// used as the optimistic concurrency token.
type Order struct {
	ID            string          `json:"id" bson:"_id"`
	UserID        string          `json:"user_id" bson:"user_id"`
	Address       string          `json:"address" bson:"address"`
	Name          string          `json:"name" bson:"name"`
	Email         string          `json:"email" bson:"email"`
	Phone         string          `json:"phone" bson:"phone"`
	Items         []LineItem      `json:"items" bson:"items"`
	PaymentMethod string          `json:"payment_method" bson:"payment_method"`
	Status        OrderStatus     `json:"status" bson:"status"`
	Active        RecordStatus    `json:"active" bson:"active"`
	Total         decimal.Decimal `json:"total" bson:"total"`
	Assigned      string          `json:"assigned,omitempty" bson:"assigned,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
	Version       int64           `json:"version" bson:"version"`
}
