package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleEvent() domain.Event {
	return domain.Event{
		ID:          "2b6f0cc9-3a0e-4d0e-9f3e-3e1c7f8a0b11",
		Type:        domain.EventOrderCancelled,
		AggregateID: "665f1c2e9b1d8a0012345678",
		OccurredAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Movements:   []domain.StockMovement{{ProductID: "p1", Delta: 2}},
	}
}

func TestToMessage(t *testing.T) {
	msg, err := toMessage(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "665f1c2e9b1d8a0012345678", string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "order.cancelled", string(msg.Headers[0].Value))

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, sampleEvent(), decoded)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Len(t, w.msgs, 1)

	w.err = errors.New("leader not available")
	err := p.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.cancelled")
}

func TestNewKafkaPublisher_WritesWithoutBatchDelay(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "storefront.events")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)

	assert.Equal(t, "storefront.events", w.Topic)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}
