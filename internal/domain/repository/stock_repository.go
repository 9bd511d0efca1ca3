package repository

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// StockLineRepository espejo persistente de las líneas del libro (producto × ubicación).
// Upsert solo escribe si la versión recibida es mayor que la guardada.
type StockLineRepository interface {
	Upsert(ctx context.Context, line entity.StockLine) error
	List(ctx context.Context) ([]entity.StockLine, error)
}
