package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/reservas-api/internal/application/inventory"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// messageWriter lo que usa el publicador de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos de reservas en un tópico. La clave del mensaje es la del
// evento (producto o contenedor), así los eventos de un mismo producto caen en la misma partición.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher crea el publicador sobre los brokers dados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
		},
		timeout: 5 * time.Second,
	}
}

// Publish escribe los eventos en un solo lote.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...inventory.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		m, err := encode(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("escribir %d eventos en kafka: %w", len(msgs), err)
	}
	return nil
}

// Close vacía el lote pendiente y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev inventory.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}, nil
}
