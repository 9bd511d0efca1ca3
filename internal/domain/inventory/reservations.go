package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ReservationStore reservas y su máquina de estados:
// Pending -> Validated -> Dispatched; Pending|Validated -> Rejected; Validated -> Pending (edición).
type ReservationStore struct {
	locks    *keyLocks
	ledger   *StockLedger
	registry *ContainerRegistry
	book     *reservationBook
	now      func() time.Time
	newID    func() string
}

// CreateRequest datos para crear una reserva (producto, cantidad y origen vienen de la cotización).
type CreateRequest struct {
	Customer    string
	Product     string
	Quantity    int64
	Source      entity.Source
	SourceID    string
	QuoteNumber string
	Advisor     string
	ExpiresAt   *time.Time
}

// EditRequest campos opcionales de una edición. ClearExpiration quita el vencimiento.
type EditRequest struct {
	Product         *string
	Quantity        *int64
	ExpiresAt       *time.Time
	ClearExpiration bool
}

// ReservationFilter filtros de listado; vacío = sin filtro.
type ReservationFilter struct {
	Status   entity.ReservationStatus
	Product  string
	Advisor  string
	Source   entity.Source
	SourceID string
}

func (f ReservationFilter) match(r *entity.Reservation) bool {
	return (f.Status == "" || r.Status == f.Status) &&
		(f.Product == "" || r.Product == entity.NormalizeProduct(f.Product)) &&
		(f.Advisor == "" || r.Advisor == f.Advisor) &&
		(f.Source == "" || r.Source == f.Source) &&
		(f.SourceID == "" || r.SourceID == f.SourceID)
}

func (s *ReservationStore) normalize(req CreateRequest) (CreateRequest, error) {
	req.Product = entity.NormalizeProduct(req.Product)
	req.Customer = strings.TrimSpace(req.Customer)
	req.QuoteNumber = strings.TrimSpace(req.QuoteNumber)
	req.SourceID = strings.TrimSpace(req.SourceID)
	if req.Product == "" || req.QuoteNumber == "" || req.Customer == "" || req.Quantity <= 0 || !req.Source.Valid() {
		return req, domain.ErrInvalidInput
	}
	if loc, ok := req.Source.Location(); ok {
		tag := entity.LocationTag(loc)
		if req.SourceID != "" && req.SourceID != tag {
			return req, fmt.Errorf("%w: source_id %q no corresponde a %s", domain.ErrInvalidInput, req.SourceID, loc)
		}
		req.SourceID = tag
	} else if req.SourceID == "" {
		return req, fmt.Errorf("%w: falta el contenedor", domain.ErrInvalidInput)
	}
	return req, nil
}

// acquire cuenta qty en el origen. El llamador tiene la clave del origen y book.mu.
func (s *ReservationStore) acquire(source entity.Source, sourceID, product string, qty int64, excludeID string) (*entity.StockLine, error) {
	if loc, ok := source.Location(); ok {
		line := s.ledger.line(product, loc)
		if err := s.ledger.reserveLocked(line, qty); err != nil {
			return nil, err
		}
		return line, nil
	}
	c := s.registry.get(sourceID)
	if c == nil {
		return nil, fmt.Errorf("%w: contenedor %s", domain.ErrNotFound, sourceID)
	}
	available, err := s.registry.availableLocked(c, product, excludeID)
	if err != nil {
		return nil, err
	}
	if qty > available {
		return nil, fmt.Errorf("%w: %s en contenedor %s disponible %d, solicitado %d",
			domain.ErrInsufficientStock, product, sourceID, available, qty)
	}
	return nil, nil
}

// release descuenta la reserva de su origen. Para contenedores el conteo es derivado y no hay nada que mutar.
func (s *ReservationStore) release(r *entity.Reservation) (*entity.StockLine, error) {
	loc, ok := r.Source.Location()
	if !ok {
		return nil, nil
	}
	line := s.ledger.line(r.Product, loc)
	if err := s.ledger.releaseLocked(line, r.Quantity); err != nil {
		return nil, err
	}
	return line, nil
}

// lockReservation toma la clave del origen de la reserva (más las extra) y book.mu.
// Si otra operación reetiquetó la reserva mientras se esperaba, reintenta con la clave nueva.
func (s *ReservationStore) lockReservation(id string, extra func(*entity.Reservation) []string) (*entity.Reservation, func(), error) {
	for {
		s.book.mu.Lock()
		r, ok := s.book.byID[id]
		if !ok {
			s.book.mu.Unlock()
			return nil, nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
		}
		source, sourceID, product := r.Source, r.SourceID, r.Product
		keys := []string{sourceKey(source, sourceID, product)}
		if extra != nil {
			keys = append(keys, extra(r)...)
		}
		s.book.mu.Unlock()

		unlock := s.locks.Lock(keys...)
		s.book.mu.Lock()
		r, ok = s.book.byID[id]
		if ok && r.Source == source && r.SourceID == sourceID && r.Product == product {
			return r, func() {
				s.book.mu.Unlock()
				unlock()
			}, nil
		}
		s.book.mu.Unlock()
		unlock()
		if !ok {
			return nil, nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
		}
	}
}

func (s *ReservationStore) touch(r *entity.Reservation) {
	r.Version++
	r.UpdatedAt = s.now()
}

func outcomeOf(r *entity.Reservation, lines ...*entity.StockLine) *Outcome {
	out := &Outcome{Reservation: r.Clone()}
	for _, l := range lines {
		if l != nil {
			out.Lines = append(out.Lines, *l)
		}
	}
	return out
}

// Create verifica la cotización y la disponibilidad, separa la cantidad y registra la reserva en Pending,
// todo bajo la clave del origen.
func (s *ReservationStore) Create(req CreateRequest) (*Outcome, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sourceKey(req.Source, req.SourceID, req.Product))
	defer unlock()
	s.book.mu.Lock()
	defer s.book.mu.Unlock()

	if other, dup := s.book.quotes[req.QuoteNumber]; dup {
		return nil, fmt.Errorf("%w: %s (reserva %s)", domain.ErrDuplicateQuote, req.QuoteNumber, other)
	}
	line, err := s.acquire(req.Source, req.SourceID, req.Product, req.Quantity, "")
	if err != nil {
		return nil, err
	}
	now := s.now()
	r := &entity.Reservation{
		ID:          s.newID(),
		Customer:    req.Customer,
		Product:     req.Product,
		Quantity:    req.Quantity,
		Source:      req.Source,
		SourceID:    req.SourceID,
		QuoteNumber: req.QuoteNumber,
		Advisor:     req.Advisor,
		Status:      entity.ReservationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if req.ExpiresAt != nil {
		at := *req.ExpiresAt
		r.ExpiresAt = &at
	}
	s.book.byID[r.ID] = r
	s.book.quotes[r.QuoteNumber] = r.ID
	return outcomeOf(r, line), nil
}

// Get instantánea de una reserva.
func (s *ReservationStore) Get(id string) (*entity.Reservation, error) {
	s.book.mu.Lock()
	defer s.book.mu.Unlock()
	r, ok := s.book.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
	}
	return r.Clone(), nil
}

// List reservas que cumplen el filtro, de la más antigua a la más reciente.
func (s *ReservationStore) List(f ReservationFilter) []*entity.Reservation {
	s.book.mu.Lock()
	var out []*entity.Reservation
	for _, r := range s.book.byID {
		if f.match(r) {
			out = append(out, r.Clone())
		}
	}
	s.book.mu.Unlock()
	sortOldestFirst(out)
	return out
}

// Validate Pending -> Validated. No toca el libro: la cantidad ya se contó al crear.
func (s *ReservationStore) Validate(id string) (*Outcome, error) {
	r, unlock, err := s.lockReservation(id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := checkTransition(r, entity.ReservationValidated); err != nil {
		return nil, err
	}
	r.Status = entity.ReservationValidated
	s.touch(r)
	return outcomeOf(r), nil
}

// Reject cualquier estado no terminal -> Rejected, liberando la cantidad.
func (s *ReservationStore) Reject(id, reason string) (*Outcome, error) {
	r, unlock, err := s.lockReservation(id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.rejectLocked(r, reason)
}

func (s *ReservationStore) rejectLocked(r *entity.Reservation, reason string) (*Outcome, error) {
	if err := checkTransition(r, entity.ReservationRejected); err != nil {
		return nil, err
	}
	line, err := s.release(r)
	if err != nil {
		return nil, err
	}
	r.Status = entity.ReservationRejected
	r.RejectionReason = strings.TrimSpace(reason)
	s.book.dropQuote(r)
	s.touch(r)
	return outcomeOf(r, line), nil
}

// Edit edición que exige revalidar: libera la cantidad anterior, separa la nueva y deja la reserva en Pending.
// Si no hay stock para la nueva, deshace la liberación y la reserva queda intacta.
func (s *ReservationStore) Edit(id string, req EditRequest) (*Outcome, error) {
	var newProduct string
	if req.Product != nil {
		newProduct = entity.NormalizeProduct(*req.Product)
		if newProduct == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	r, unlock, err := s.lockReservation(id, func(r *entity.Reservation) []string {
		if newProduct == "" {
			return nil
		}
		return []string{sourceKey(r.Source, r.SourceID, newProduct)}
	})
	if err != nil {
		return nil, err
	}
	defer unlock()

	if r.Status.Terminal() {
		return nil, fmt.Errorf("%w: reserva %s en %s", domain.ErrInvalidState, id, r.Status)
	}

	product, qty, expires := r.Product, r.Quantity, r.ExpiresAt
	if newProduct != "" {
		product = newProduct
	}
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if req.ClearExpiration {
		expires = nil
	} else if req.ExpiresAt != nil {
		at := *req.ExpiresAt
		expires = &at
	}
	if product == r.Product && qty == r.Quantity && sameTime(expires, r.ExpiresAt) {
		return outcomeOf(r), nil
	}

	oldLine, err := s.release(r)
	if err != nil {
		return nil, err
	}
	newLine, err := s.acquire(r.Source, r.SourceID, product, qty, r.ID)
	if err != nil {
		if oldLine != nil {
			if cerr := s.ledger.reserveLocked(oldLine, r.Quantity); cerr != nil {
				return nil, fmt.Errorf("%w: no se pudo restaurar la reserva %s: %v (tras %v)",
					domain.ErrInvariantViolation, id, cerr, err)
			}
		}
		return nil, err
	}

	prev := r.Clone()
	r.Product = product
	r.Quantity = qty
	r.ExpiresAt = expires
	r.Status = entity.ReservationPending
	s.touch(r)
	var out *Outcome
	if oldLine == newLine {
		out = outcomeOf(r, oldLine)
	} else {
		out = outcomeOf(r, oldLine, newLine)
	}
	out.Previous = prev
	return out, nil
}

// Delete libera la cantidad si la reserva sigue activa y la elimina. El Outcome lleva
// una instantánea marcada Deleted para el espejo.
func (s *ReservationStore) Delete(id string) (*Outcome, error) {
	r, unlock, err := s.lockReservation(id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var line *entity.StockLine
	if r.Status.Active() {
		if line, err = s.release(r); err != nil {
			return nil, err
		}
		s.book.dropQuote(r)
	}
	delete(s.book.byID, id)
	s.touch(r)
	out := outcomeOf(r, line)
	out.Reservation.Deleted = true
	return out, nil
}

// Dispatch Validated -> Dispatched. Baja total y separadas juntos en el mismo origen,
// así nunca hay una ventana con separadas > total.
func (s *ReservationStore) Dispatch(id string) (*Outcome, error) {
	r, unlock, err := s.lockReservation(id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := checkTransition(r, entity.ReservationDispatched); err != nil {
		return nil, err
	}
	loc, ok := r.Source.Location()
	if !ok {
		return nil, fmt.Errorf("%w: la reserva %s apunta al contenedor %s que aún no ha llegado",
			domain.ErrInvalidState, id, r.SourceID)
	}
	line := s.ledger.line(r.Product, loc)
	if line.Reserved < r.Quantity || line.Total < r.Quantity {
		return nil, fmt.Errorf("%w: despacho de %d con total %d separadas %d en %s/%s",
			domain.ErrInvariantViolation, r.Quantity, line.Total, line.Reserved, r.Product, loc)
	}
	line.Total -= r.Quantity
	line.Reserved -= r.Quantity
	s.ledger.touch(line)

	r.Status = entity.ReservationDispatched
	s.book.dropQuote(r)
	s.touch(r)
	return outcomeOf(r, line), nil
}

// ExpireOverdue rechaza, con motivo "vencida", las reservas activas cuyo vencimiento es anterior a now.
// Se invoca explícitamente; el núcleo no corre tareas en segundo plano.
func (s *ReservationStore) ExpireOverdue(now time.Time) ([]*Outcome, error) {
	s.book.mu.Lock()
	var ids []string
	for id, r := range s.book.byID {
		if r.Status.Active() && r.Expired(now) {
			ids = append(ids, id)
		}
	}
	s.book.mu.Unlock()

	var out []*Outcome
	for _, id := range ids {
		r, unlock, err := s.lockReservation(id, nil)
		if err != nil {
			continue // eliminada entre tanto
		}
		if !r.Status.Active() || !r.Expired(now) {
			unlock()
			continue
		}
		o, err := s.rejectLocked(r, entity.RejectionReasonExpired)
		unlock()
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

// checkTransition ErrInvalidState si la reserva ya terminó; ErrInvalidTransition si el paso no es legal.
func checkTransition(r *entity.Reservation, to entity.ReservationStatus) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: reserva %s en %s", domain.ErrInvalidState, r.ID, r.Status)
	}
	if !entity.CanTransition(r.Status, to) {
		return fmt.Errorf("%w: reserva %s de %s a %s", domain.ErrInvalidTransition, r.ID, r.Status, to)
	}
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
