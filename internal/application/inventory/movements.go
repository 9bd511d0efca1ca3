package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

func (s *Service) movement(txID, typ string, actor entity.Actor, product string, loc entity.LocationKind, qty, reservedDelta int64, reference string) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		Type:          typ,
		Product:       product,
		Location:      loc,
		Quantity:      qty,
		ReservedDelta: reservedDelta,
		Ratio:         decimal.Zero,
		Reference:     reference,
		CreatedBy:     actor.UserID,
		CreatedAt:     s.now(),
	}
}

// reservationMovement asiento de una reserva. Las de contenedor van sin ubicación.
func (s *Service) reservationMovement(txID, typ string, actor entity.Actor, r *entity.Reservation, reservedDelta int64) *entity.InventoryMovement {
	loc, _ := r.Source.Location()
	return s.movement(txID, typ, actor, r.Product, loc, 0, reservedDelta, r.ID)
}

// Movements consulta el diario de un producto. Requiere BD.
func (s *Service) Movements(ctx context.Context, product string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	if s.txRunner == nil {
		return nil, domain.ErrNotFound
	}
	product = entity.NormalizeProduct(product)
	var list []*entity.InventoryMovement
	err := s.txRunner.Run(ctx, func(
		_ repository.StockLineRepository,
		_ repository.ContainerRepository,
		_ repository.ReservationRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		var err error
		list, err = movRepo.ListByProduct(ctx, product, from, to, limit, offset)
		return err
	})
	return list, err
}

// ReservationHistory asientos del diario que referencian una reserva. Requiere BD.
func (s *Service) ReservationHistory(ctx context.Context, id string) ([]*entity.InventoryMovement, error) {
	if s.txRunner == nil {
		return nil, domain.ErrNotFound
	}
	var list []*entity.InventoryMovement
	err := s.txRunner.Run(ctx, func(
		_ repository.StockLineRepository,
		_ repository.ContainerRepository,
		_ repository.ReservationRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		var err error
		list, err = movRepo.ListByReference(ctx, id)
		return err
	})
	return list, err
}
