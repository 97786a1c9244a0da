package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/api/metrics"
	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	publishTimeout = 10 * time.Second
)

// Dispatcher routes lifecycle events to a fixed set of workers using
// consistent hashing on the aggregate id, so events of one order or sale are
// published in the order they were enqueued.
type Dispatcher struct {
	workers   []chan domain.Event
	publisher ports.EventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup

	// mu orders Enqueue against Stop closing the channels.
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Event, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Stop closes their
// channels and the backlog is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(context.WithoutCancel(ctx), i, ch)
	}
}

// Stop closes the worker channels and waits until queued events have been
// published or ctx expires. Events enqueued after Stop are dropped.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue hands an event to the worker responsible for its aggregate. It
// never blocks: when that worker's buffer is full, or the dispatcher has
// stopped, the event is dropped and counted.
func (d *Dispatcher) Enqueue(event domain.Event) {
	idx := d.shardIndex(event.AggregateID)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(event, idx, "stopped")
		return
	}
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, idx, "queue_full")
	}
}

func (d *Dispatcher) drop(event domain.Event, workerID int, reason string) {
	metrics.EventsDroppedTotal.WithLabelValues(string(event.Type), reason).Inc()
	d.log.Warn().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("aggregate_id", event.AggregateID).
		Int("worker_id", workerID).
		Str("reason", reason).
		Msg("event dropped")
}

// shardIndex maps an aggregate id deterministically to a worker index.
func (d *Dispatcher) shardIndex(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		d.publish(ctx, id, event)
	}
}

func (d *Dispatcher) publish(ctx context.Context, workerID int, event domain.Event) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := d.publisher.Publish(ctx, event)
	metrics.EventPublishDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EventsFailedTotal.WithLabelValues(string(event.Type)).Inc()
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("aggregate_id", event.AggregateID).
			Int("worker_id", workerID).
			Msg("event publishing failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
}
