package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// El espejo de cada operación del motor se escribe completo o no se escribe.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockLineRepository,
		containerRepo repository.ContainerRepository,
		reservationRepo repository.ReservationRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}

// EventPublisher publica eventos de dominio hacia otros servicios.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Event hecho de negocio ya ocurrido. Key agrupa por producto o contenedor para conservar el orden.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor,omitempty"`
	Data       any       `json:"data"`
}

// Tipos de evento.
const (
	EventReservationCreated    = "reserva.creada"
	EventReservationValidated  = "reserva.validada"
	EventReservationRejected   = "reserva.rechazada"
	EventReservationEdited     = "reserva.editada"
	EventReservationDispatched = "reserva.despachada"
	EventReservationDeleted    = "reserva.eliminada"
	EventReservationExpired    = "reserva.vencida"
	EventContainerCreated      = "contenedor.creado"
	EventContainerArrived      = "contenedor.llegado"
	EventContainerUpdated      = "contenedor.actualizado"
	EventTransferDone          = "traslado.realizado"
	EventStockAdjusted         = "stock.ajustado"
)
