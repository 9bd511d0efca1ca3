package repository

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ReservationRepository espejo de reservas. Las eliminadas quedan con deleted = true.
type ReservationRepository interface {
	Upsert(ctx context.Context, r *entity.Reservation) error
	// ListLive devuelve las reservas no eliminadas.
	ListLive(ctx context.Context) ([]*entity.Reservation, error)
}
