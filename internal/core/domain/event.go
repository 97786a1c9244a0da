package domain

import "time"

// EventType names a lifecycle event published after a transaction commits.
type EventType string

const (
	EventOrderCreated    EventType = "order.created"
	EventOrderCancelled  EventType = "order.cancelled"
	EventSaleCreated     EventType = "sale.created"
	EventSaleDeactivated EventType = "sale.deactivated"
)

// StockMovement is one product quantity change carried by an event.
type StockMovement struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
}

// Event is the envelope handed to the dispatcher. AggregateID is the order or
// sale id and decides which worker handles it.
type Event struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Movements   []StockMovement `json:"movements"`
}
