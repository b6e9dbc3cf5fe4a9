package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/application/ports"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{w: w}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), ports.Event{
		ID:         "e-1",
		Type:       ports.EventOrderCreated,
		Key:        "o-1",
		OccurredAt: at,
		Payload:    map[string]string{"order_id": "o-1"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "o-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, ports.EventOrderCreated, string(msg.Headers[0].Value))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "e-1", body["event_id"])
	assert.Equal(t, ports.EventOrderCreated, body["event_type"])
	assert.NotContains(t, body, "Key")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{err: errors.New("no debería llamarse")}
	p := &Publisher{w: w}
	assert.NoError(t, p.Publish(context.Background()))
}

func TestPublisher_ErrorDelBroker(t *testing.T) {
	p := &Publisher{w: &fakeWriter{err: errors.New("broker caído")}}
	err := p.Publish(context.Background(), ports.Event{Type: ports.EventOrderDeleted})
	assert.ErrorContains(t, err, "broker caído")
}

func TestPublisher_PayloadNoSerializable(t *testing.T) {
	p := &Publisher{w: &fakeWriter{}}
	err := p.Publish(context.Background(), ports.Event{Type: ports.EventOrderUpdated, Payload: make(chan int)})
	assert.Error(t, err)
}
