package messaging

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

var _ inventory.EventPublisher = (*NoopPublisher)(nil)

// NoopPublisher se usa cuando no hay brokers: solo deja rastro en el log a nivel debug.
type NoopPublisher struct {
	log *logger.Logger
}

// NewNoopPublisher construye el publicador nulo.
func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.Component("events")}
}

func (p *NoopPublisher) Publish(ctx context.Context, events ...inventory.Event) error {
	for _, ev := range events {
		p.log.Debug().Str("type", ev.Type).Str("key", ev.Key).Str("id", ev.ID).Msg("evento sin publicar")
	}
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
