// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto; /metrics gathers them alongside the HTTP
// metrics recorded by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Order and sale metrics ────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders committed with their stock reserved.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrdersCancelledTotal counts cancellations that restored stock.
var OrdersCancelledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_cancelled_total",
		Help:      "Total number of orders cancelled.",
	},
)

// OrderStatusChangesTotal counts status transitions.
// Label:
//   - to: the new order status (e.g. "in-transit")
var OrderStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Total number of order status transitions, by target status.",
	},
	[]string{"to"},
)

// SalesCreatedTotal counts point-of-sale transactions.
// Label:
//   - payment_method: "cash", "card" or "transfer"
var SalesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_created_total",
		Help:      "Total number of sales created, by payment method.",
	},
	[]string{"payment_method"},
)

// SalesDeactivatedTotal counts sales voided with their stock restored.
var SalesDeactivatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_deactivated_total",
		Help:      "Total number of sales deactivated.",
	},
)

// StockReservationFailuresTotal counts order or sale creations rejected by
// the catalog.
// Labels:
//   - kind: "order" or "sale"
//   - reason: "insufficient_stock", "product_not_found" or "product_inactive"
var StockReservationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_reservation_failures_total",
		Help:      "Total number of stock reservations rejected, by reason.",
	},
	[]string{"kind", "reason"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts lifecycle events delivered to the broker.
// Label:
//   - type: the event type (e.g. "order.created")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of lifecycle events published.",
	},
	[]string{"type"},
)

// EventsFailedTotal counts events the publisher rejected.
var EventsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_failed_total",
		Help:      "Total number of lifecycle events that failed to publish.",
	},
	[]string{"type"},
)

// EventsDroppedTotal counts events discarded before publishing.
// Labels: type, reason (queue_full, stopped).
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of lifecycle events dropped because the dispatcher could not take them.",
	},
	[]string{"type", "reason"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long a single publish takes.
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of event publishing from dequeue to broker acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
