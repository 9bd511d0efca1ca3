package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

// Service casos de uso del motor de reservas. El motor en memoria es la fuente de verdad;
// tras cada operación exitosa se replica lo tocado en BD (si hay TxRunner), se registran
// movimientos en el diario y se publican eventos.
type Service struct {
	engine    *inventory.Engine
	txRunner  TxRunner
	events    EventPublisher
	log       *logger.Logger
	selection inventory.Selection
	now       func() time.Time

	violations     atomic.Int64
	mirrorFailures atomic.Int64
}

// NewService construye el servicio. txRunner nil = sin espejo; events nil = sin publicación.
func NewService(engine *inventory.Engine, txRunner TxRunner, events EventPublisher, log *logger.Logger, selection inventory.Selection) *Service {
	if selection == "" {
		selection = inventory.SelectionOldestFirst
	}
	return &Service{
		engine:    engine,
		txRunner:  txRunner,
		events:    events,
		log:       log.Component("inventory"),
		selection: selection,
		now:       time.Now,
	}
}

// change todo lo que una operación debe replicar y publicar.
type change struct {
	lines        []entity.StockLine
	containers   []*entity.Container
	reservations []*entity.Reservation
	movements    []*entity.InventoryMovement
	events       []Event
}

func (c *change) fromOutcome(out *inventory.Outcome) {
	c.lines = append(c.lines, out.Lines...)
	if out.Container != nil {
		c.containers = append(c.containers, out.Container)
	}
	if out.Reservation != nil {
		c.reservations = append(c.reservations, out.Reservation)
	}
	c.reservations = append(c.reservations, out.Relabeled...)
}

// fail registra el error. Las violaciones de invariante se cuentan y se loguean con alert=true.
func (s *Service) fail(op string, err error) error {
	if errors.Is(err, domain.ErrInvariantViolation) {
		s.violations.Add(1)
		s.log.Alert().Err(err).Str("op", op).Msg("violación de invariante de inventario")
		return err
	}
	s.log.Debug().Err(err).Str("op", op).Str("code", domain.Code(err)).Msg("operación rechazada")
	return err
}

// commit replica y publica. Un fallo aquí no deshace la operación del motor; se cuenta en Stats
// y se loguea con alert=true para que el operador reconcilie.
func (s *Service) commit(ctx context.Context, op string, ch change) {
	if s.txRunner != nil {
		err := s.txRunner.Run(ctx, func(
			stockRepo repository.StockLineRepository,
			containerRepo repository.ContainerRepository,
			reservationRepo repository.ReservationRepository,
			movRepo repository.InventoryMovementRepository,
		) error {
			for _, l := range ch.lines {
				if err := stockRepo.Upsert(ctx, l); err != nil {
					return err
				}
			}
			for _, c := range ch.containers {
				if err := containerRepo.Upsert(ctx, c); err != nil {
					return err
				}
			}
			for _, r := range ch.reservations {
				if err := reservationRepo.Upsert(ctx, r); err != nil {
					return err
				}
			}
			for _, m := range ch.movements {
				if err := movRepo.Create(ctx, m); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.mirrorFailures.Add(1)
			s.log.Alert().Err(err).Str("op", op).Msg("no se pudo replicar en BD")
		}
	}
	if s.events != nil && len(ch.events) > 0 {
		if err := s.events.Publish(ctx, ch.events...); err != nil {
			s.log.Warn().Err(err).Str("op", op).Int("events", len(ch.events)).Msg("no se pudieron publicar eventos")
		}
	}
}

func (s *Service) event(typ, key string, actor entity.Actor, data any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		Key:        key,
		OccurredAt: s.now(),
		Actor:      actor.UserID,
		Data:       data,
	}
}

// Bootstrap carga el espejo de BD en el motor. Sin TxRunner no hace nada.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.txRunner == nil {
		return nil
	}
	var (
		lines        []entity.StockLine
		containers   []*entity.Container
		reservations []*entity.Reservation
	)
	err := s.txRunner.Run(ctx, func(
		stockRepo repository.StockLineRepository,
		containerRepo repository.ContainerRepository,
		reservationRepo repository.ReservationRepository,
		_ repository.InventoryMovementRepository,
	) error {
		var err error
		if lines, err = stockRepo.List(ctx); err != nil {
			return err
		}
		if containers, err = containerRepo.List(ctx); err != nil {
			return err
		}
		reservations, err = reservationRepo.ListLive(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("cargar estado: %w", err)
	}
	if err := s.engine.Restore(lines, containers, reservations); err != nil {
		return s.fail("bootstrap", err)
	}
	s.log.Info().
		Int("lines", len(lines)).
		Int("containers", len(containers)).
		Int("reservations", len(reservations)).
		Msg("estado de inventario restaurado")
	if drift := s.engine.Drift(); len(drift) > 0 {
		s.log.Warn().Int("lines", len(drift)).Msg("líneas con separadas distintas a sus reservas")
	}
	return nil
}

// Stats contadores para /health.
type Stats struct {
	InvariantViolations int64
	MirrorFailures      int64
	Drift               int
}

// Stats devuelve los contadores actuales.
func (s *Service) Stats() Stats {
	return Stats{
		InvariantViolations: s.violations.Load(),
		MirrorFailures:      s.mirrorFailures.Load(),
		Drift:               len(s.engine.Drift()),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

// Lines instantánea del libro.
func (s *Service) Lines() []entity.StockLine {
	return s.engine.Ledger.Lines()
}

// Line instantánea de una línea.
func (s *Service) Line(product string, loc entity.LocationKind) (entity.StockLine, error) {
	return s.engine.Ledger.Line(product, loc)
}

// AdjustStock suma (delta > 0) o retira (delta < 0) unidades físicas de una línea.
func (s *Service) AdjustStock(ctx context.Context, actor entity.Actor, product string, loc entity.LocationKind, delta int64, reason string) (entity.StockLine, error) {
	var (
		line entity.StockLine
		err  error
	)
	switch {
	case delta > 0:
		line, err = s.engine.Ledger.AddTotal(product, loc, delta)
	case delta < 0:
		line, err = s.engine.Ledger.RemoveTotal(product, loc, -delta)
	default:
		err = domain.ErrInvalidInput
	}
	if err != nil {
		return line, s.fail("adjust_stock", err)
	}
	mov := s.movement(uuid.New().String(), entity.MovementTypeADJUSTMENT, actor, line.Product, line.Location, delta, 0, reason)
	s.commit(ctx, "adjust_stock", change{
		lines:     []entity.StockLine{line},
		movements: []*entity.InventoryMovement{mov},
		events:    []Event{s.event(EventStockAdjusted, line.Product, actor, dto.FromStockLine(line))},
	})
	s.log.Info().Str("product", line.Product).Str("location", string(loc)).Int64("delta", delta).Msg("ajuste de stock")
	return line, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Contenedores
// ──────────────────────────────────────────────────────────────────────────────

// CreateContainer registra un contenedor en tránsito.
func (s *Service) CreateContainer(ctx context.Context, actor entity.Actor, id string, eta time.Time, lots []entity.ContainerLot) (*entity.Container, error) {
	c, err := s.engine.Containers.CreateContainer(id, eta, lots)
	if err != nil {
		return nil, s.fail("create_container", err)
	}
	s.commit(ctx, "create_container", change{
		containers: []*entity.Container{c},
		events:     []Event{s.event(EventContainerCreated, c.ID, actor, dto.FromContainer(c))},
	})
	s.log.Info().Str("container_id", c.ID).Int("lots", len(c.Lots)).Msg("contenedor registrado")
	return c, nil
}

// Containers lista los contenedores.
func (s *Service) Containers() []*entity.Container {
	return s.engine.Containers.Containers()
}

// Container obtiene un contenedor.
func (s *Service) Container(id string) (*entity.Container, error) {
	return s.engine.Containers.Container(id)
}

// AvailableInContainer disponible de un producto en un contenedor en tránsito.
func (s *Service) AvailableInContainer(id, product string) (int64, error) {
	return s.engine.Containers.AvailableInContainer(id, product)
}

// MarkDelayed marca el contenedor como demorado, con nueva ETA opcional.
func (s *Service) MarkDelayed(ctx context.Context, actor entity.Actor, id string, eta time.Time) (*entity.Container, error) {
	c, err := s.engine.Containers.MarkDelayed(id, eta)
	if err != nil {
		return nil, s.fail("delay_container", err)
	}
	s.commit(ctx, "delay_container", change{
		containers: []*entity.Container{c},
		events:     []Event{s.event(EventContainerUpdated, c.ID, actor, dto.FromContainer(c))},
	})
	return c, nil
}

// ResumeTransit devuelve un contenedor demorado a tránsito.
func (s *Service) ResumeTransit(ctx context.Context, actor entity.Actor, id string) (*entity.Container, error) {
	c, err := s.engine.Containers.ResumeTransit(id)
	if err != nil {
		return nil, s.fail("resume_container", err)
	}
	s.commit(ctx, "resume_container", change{
		containers: []*entity.Container{c},
		events:     []Event{s.event(EventContainerUpdated, c.ID, actor, dto.FromContainer(c))},
	})
	return c, nil
}

// MarkArrived suma el contenedor a Zona Franca y reetiqueta sus reservas.
func (s *Service) MarkArrived(ctx context.Context, actor entity.Actor, id string, at time.Time) (*inventory.Outcome, error) {
	out, err := s.engine.Containers.MarkArrived(id, at)
	if err != nil {
		return nil, s.fail("arrive_container", err)
	}
	ch := change{}
	ch.fromOutcome(out)
	txID := uuid.New().String()
	held := make(map[string]int64)
	for _, r := range out.Relabeled {
		held[r.Product] += r.Quantity
	}
	for _, lot := range out.Container.Lots {
		m := s.movement(txID, entity.MovementTypeARRIVAL, actor, lot.Product, entity.LocationFreeZone, lot.Quantity, held[lot.Product], out.Container.ID)
		ch.movements = append(ch.movements, m)
	}
	ch.events = append(ch.events, s.event(EventContainerArrived, out.Container.ID, actor, dto.ArrivalResponse{
		Container: dto.FromContainer(out.Container),
		Lines:     dto.FromStockLines(out.Lines),
		Relabeled: dto.FromReservations(out.Relabeled),
	}))
	s.commit(ctx, "arrive_container", ch)
	s.log.Info().Str("container_id", id).Int("relabeled", len(out.Relabeled)).Msg("contenedor llegado a Zona Franca")
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

// CreateReservation separa stock contra una cotización. El asesor por defecto es quien llama.
func (s *Service) CreateReservation(ctx context.Context, actor entity.Actor, req inventory.CreateRequest) (*inventory.Outcome, error) {
	if req.Advisor == "" {
		req.Advisor = actor.UserID
	}
	out, err := s.engine.Reservations.Create(req)
	if err != nil {
		return nil, s.fail("create_reservation", err)
	}
	r := out.Reservation
	s.commitReservation(ctx, "create_reservation", EventReservationCreated, actor, out,
		s.reservationMovement(uuid.New().String(), entity.MovementTypeRESERVE, actor, r, r.Quantity))
	s.log.Info().Str("reservation_id", r.ID).Str("quote", r.QuoteNumber).Str("product", r.Product).
		Int64("quantity", r.Quantity).Str("source", string(r.Source)).Msg("reserva creada")
	return out, nil
}

// GetReservation obtiene una reserva.
func (s *Service) GetReservation(id string) (*entity.Reservation, error) {
	return s.engine.Reservations.Get(id)
}

// ListReservations lista reservas filtradas.
func (s *Service) ListReservations(f inventory.ReservationFilter) []*entity.Reservation {
	return s.engine.Reservations.List(f)
}

// ValidateReservation Pending -> Validated.
func (s *Service) ValidateReservation(ctx context.Context, actor entity.Actor, id string) (*inventory.Outcome, error) {
	out, err := s.engine.Reservations.Validate(id)
	if err != nil {
		return nil, s.fail("validate_reservation", err)
	}
	s.commitReservation(ctx, "validate_reservation", EventReservationValidated, actor, out)
	return out, nil
}

// RejectReservation rechaza y libera.
func (s *Service) RejectReservation(ctx context.Context, actor entity.Actor, id, reason string) (*inventory.Outcome, error) {
	out, err := s.engine.Reservations.Reject(id, reason)
	if err != nil {
		return nil, s.fail("reject_reservation", err)
	}
	r := out.Reservation
	s.commitReservation(ctx, "reject_reservation", EventReservationRejected, actor, out,
		s.reservationMovement(uuid.New().String(), entity.MovementTypeRELEASE, actor, r, -r.Quantity))
	return out, nil
}

// EditReservation cambia producto, cantidad o vencimiento; la reserva vuelve a Pending.
func (s *Service) EditReservation(ctx context.Context, actor entity.Actor, id string, req inventory.EditRequest) (*inventory.Outcome, error) {
	out, err := s.engine.Reservations.Edit(id, req)
	if err != nil {
		return nil, s.fail("edit_reservation", err)
	}
	if out.Previous == nil {
		return out, nil // sin cambios
	}
	txID := uuid.New().String()
	prev, r := out.Previous, out.Reservation
	var movs []*entity.InventoryMovement
	if prev.Product != r.Product || prev.Quantity != r.Quantity {
		movs = append(movs,
			s.reservationMovement(txID, entity.MovementTypeRELEASE, actor, prev, -prev.Quantity),
			s.reservationMovement(txID, entity.MovementTypeRESERVE, actor, r, r.Quantity))
	}
	s.commitReservation(ctx, "edit_reservation", EventReservationEdited, actor, out, movs...)
	return out, nil
}

// DeleteReservation libera si está activa y elimina.
func (s *Service) DeleteReservation(ctx context.Context, actor entity.Actor, id string) (*inventory.Outcome, error) {
	out, err := s.engine.Reservations.Delete(id)
	if err != nil {
		return nil, s.fail("delete_reservation", err)
	}
	r := out.Reservation
	var movs []*entity.InventoryMovement
	if r.Status.Active() {
		movs = append(movs, s.reservationMovement(uuid.New().String(), entity.MovementTypeRELEASE, actor, r, -r.Quantity))
	}
	s.commitReservation(ctx, "delete_reservation", EventReservationDeleted, actor, out, movs...)
	return out, nil
}

// DispatchReservation Validated -> Dispatched; el stock sale físicamente.
func (s *Service) DispatchReservation(ctx context.Context, actor entity.Actor, id string) (*inventory.Outcome, error) {
	out, err := s.engine.Reservations.Dispatch(id)
	if err != nil {
		return nil, s.fail("dispatch_reservation", err)
	}
	r := out.Reservation
	mov := s.reservationMovement(uuid.New().String(), entity.MovementTypeDISPATCH, actor, r, -r.Quantity)
	mov.Quantity = -r.Quantity
	s.commitReservation(ctx, "dispatch_reservation", EventReservationDispatched, actor, out, mov)
	s.log.Info().Str("reservation_id", r.ID).Str("product", r.Product).Int64("quantity", r.Quantity).Msg("reserva despachada")
	return out, nil
}

// ExpireOverdue rechaza con motivo "vencida" las reservas activas vencidas a la fecha dada.
func (s *Service) ExpireOverdue(ctx context.Context, actor entity.Actor, now time.Time) ([]*inventory.Outcome, error) {
	if now.IsZero() {
		now = s.now()
	}
	outs, err := s.engine.Reservations.ExpireOverdue(now)
	for _, out := range outs {
		r := out.Reservation
		s.commitReservation(ctx, "expire_reservation", EventReservationExpired, actor, out,
			s.reservationMovement(uuid.New().String(), entity.MovementTypeRELEASE, actor, r, -r.Quantity))
	}
	if err != nil {
		return outs, s.fail("expire_reservations", err)
	}
	if len(outs) > 0 {
		s.log.Info().Int("expired", len(outs)).Msg("reservas vencidas")
	}
	return outs, nil
}

func (s *Service) commitReservation(ctx context.Context, op, eventType string, actor entity.Actor, out *inventory.Outcome, movs ...*entity.InventoryMovement) {
	ch := change{movements: movs}
	ch.fromOutcome(out)
	ch.events = []Event{s.event(eventType, out.Reservation.Product, actor, dto.FromReservation(out.Reservation))}
	s.commit(ctx, op, ch)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

// Transfer traslada de Zona Franca a Bodega. Sin política explícita usa la configurada.
func (s *Service) Transfer(ctx context.Context, actor entity.Actor, req inventory.TransferRequest) (*inventory.TransferResult, error) {
	if req.Selection == "" {
		req.Selection = s.selection
		if len(req.ReservationIDs) > 0 {
			req.Selection = inventory.SelectionExplicit
		}
	}
	res, err := s.engine.Transfers.Transfer(req)
	if err != nil {
		return nil, s.fail("transfer", err)
	}
	txID := uuid.New().String()
	out := s.movement(txID, entity.MovementTypeTRANSFEROUT, actor, res.Product, entity.LocationFreeZone, -res.Quantity, -res.ReservedToMove, "")
	in := s.movement(txID, entity.MovementTypeTRANSFERIN, actor, res.Product, entity.LocationWarehouse, res.Quantity, res.ReservedToMove, "")
	out.Ratio, in.Ratio = res.Ratio, res.Ratio

	s.commit(ctx, "transfer", change{
		lines:        res.Lines,
		reservations: res.Relabeled,
		movements:    []*entity.InventoryMovement{out, in},
		events:       []Event{s.event(EventTransferDone, res.Product, actor, TransferResponse(res))},
	})
	ev := s.log.Info()
	if res.Warning != "" {
		ev = s.log.Warn().Str("warning", res.Warning).Strs("blocked", res.Blocked)
	}
	ev.Str("product", res.Product).Int64("quantity", res.Quantity).
		Int64("reserved_to_move", res.ReservedToMove).Int64("moved_quantity", res.MovedQuantity).
		Msg("traslado Zona Franca -> Bodega")
	return res, nil
}

// TransferResponse convierte el resultado de un traslado.
func TransferResponse(res *inventory.TransferResult) dto.TransferResponse {
	moved := res.Moved
	if moved == nil {
		moved = []string{}
	}
	return dto.TransferResponse{
		Product:        res.Product,
		Quantity:       res.Quantity,
		Ratio:          res.Ratio,
		ReservedToMove: res.ReservedToMove,
		Moved:          moved,
		MovedQuantity:  res.MovedQuantity,
		Warning:        res.Warning,
		Blocked:        res.Blocked,
		Lines:          dto.FromStockLines(res.Lines),
	}
}
