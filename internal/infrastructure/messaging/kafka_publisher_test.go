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

	"github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
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

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: time.Second}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)
	at := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(),
		inventory.Event{ID: "e1", Type: inventory.EventReservationCreated, Key: "Carrara", OccurredAt: at, Data: map[string]int{"quantity": 30}},
		inventory.Event{ID: "e2", Type: inventory.EventTransferDone, Key: "Tan", OccurredAt: at},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	m := w.msgs[0]
	assert.Equal(t, "Carrara", string(m.Key))
	assert.Equal(t, at, m.Time)
	assert.Equal(t, "event-type", m.Headers[0].Key)
	assert.Equal(t, inventory.EventReservationCreated, string(m.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &decoded))
	assert.Equal(t, "reserva.creada", decoded["type"])
	assert.Equal(t, float64(30), decoded["data"].(map[string]any)["quantity"])
}

func TestKafkaPublisher_SinEventos(t *testing.T) {
	w := &fakeWriter{err: errors.New("no debería llamarse")}
	assert.NoError(t, newTestPublisher(w).Publish(context.Background()))
}

func TestKafkaPublisher_ErrorDeEscritura(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	err := newTestPublisher(w).Publish(context.Background(), inventory.Event{ID: "e1", Type: "x"})
	assert.ErrorContains(t, err, "broker caído")
}

func TestKafkaPublisher_DatosNoSerializables(t *testing.T) {
	w := &fakeWriter{}
	err := newTestPublisher(w).Publish(context.Background(), inventory.Event{ID: "e1", Type: "x", Data: make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestPublisher(w).Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(logger.NewNop())
	assert.NoError(t, p.Publish(context.Background(), inventory.Event{ID: "e1"}))
	assert.NoError(t, p.Close())
}
