package repository

import (
	"context"
	"time"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para el diario de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, product string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error)
}
