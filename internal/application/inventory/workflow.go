package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

// ValidationWorkflow acciones de aprobación sobre reservas. Solo actúa sobre reservas
// no terminales; no tiene lógica de libro propia.
type ValidationWorkflow struct {
	svc *Service
}

// NewValidationWorkflow construye el flujo de validación.
func NewValidationWorkflow(svc *Service) *ValidationWorkflow {
	return &ValidationWorkflow{svc: svc}
}

func (w *ValidationWorkflow) actionable(id string) error {
	r, err := w.svc.GetReservation(id)
	if err != nil {
		return err
	}
	if r.Status.Terminal() {
		return fmt.Errorf("%w: reserva %s en %s", domain.ErrInvalidState, id, r.Status)
	}
	return nil
}

// Approve Pending -> Validated.
func (w *ValidationWorkflow) Approve(ctx context.Context, actor entity.Actor, id string) (*inventory.Outcome, error) {
	if err := w.actionable(id); err != nil {
		return nil, err
	}
	out, err := w.svc.ValidateReservation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	w.svc.log.Info().Str("reservation_id", id).Str("by", actor.UserID).Msg("reserva aprobada")
	return out, nil
}

// Reject rechaza y libera la cantidad.
func (w *ValidationWorkflow) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*inventory.Outcome, error) {
	if err := w.actionable(id); err != nil {
		return nil, err
	}
	out, err := w.svc.RejectReservation(ctx, actor, id, reason)
	if err != nil {
		return nil, err
	}
	w.svc.log.Info().Str("reservation_id", id).Str("by", actor.UserID).Str("reason", reason).Msg("reserva rechazada")
	return out, nil
}

// RequestChanges edita la reserva y la devuelve a Pending para revalidación.
func (w *ValidationWorkflow) RequestChanges(ctx context.Context, actor entity.Actor, id string, edit inventory.EditRequest) (*inventory.Outcome, error) {
	if err := w.actionable(id); err != nil {
		return nil, err
	}
	return w.svc.EditReservation(ctx, actor, id, edit)
}
