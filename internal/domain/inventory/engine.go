package inventory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// Engine agrupa los componentes del motor de reservas. Comparten los candados por clave
// y la tabla de reservas; se construye una vez y se pasa por referencia.
type Engine struct {
	Ledger       *StockLedger
	Containers   *ContainerRegistry
	Reservations *ReservationStore
	Transfers    *TransferEngine

	book *reservationBook
}

// Option configura el motor.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock reemplaza el reloj (pruebas).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator reemplaza el generador de IDs de reserva (pruebas).
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// NewEngine construye el motor vacío.
func NewEngine(opts ...Option) *Engine {
	o := options{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	locks := newKeyLocks()
	book := newReservationBook()
	ledger := newStockLedger(locks, o.now)
	registry := &ContainerRegistry{
		locks: locks, ledger: ledger, book: book, now: o.now,
		containers: make(map[string]*entity.Container),
	}
	store := &ReservationStore{
		locks: locks, ledger: ledger, registry: registry, book: book,
		now: o.now, newID: o.newID,
	}
	transfers := &TransferEngine{locks: locks, ledger: ledger, book: book, now: o.now}

	return &Engine{
		Ledger:       ledger,
		Containers:   registry,
		Reservations: store,
		Transfers:    transfers,
		book:         book,
	}
}

// Outcome instantáneas de todo lo que tocó una operación, tomadas bajo los candados.
type Outcome struct {
	Reservation *entity.Reservation
	Previous    *entity.Reservation // antes de una edición
	Lines       []entity.StockLine
	Container   *entity.Container
	Relabeled   []*entity.Reservation
}

// reservationBook tabla de reservas e índice de cotizaciones activas.
// Su mutex se toma siempre después de los candados por clave.
type reservationBook struct {
	mu     sync.Mutex
	byID   map[string]*entity.Reservation
	quotes map[string]string // cotización -> ID, solo reservas activas
}

func newReservationBook() *reservationBook {
	return &reservationBook{
		byID:   make(map[string]*entity.Reservation),
		quotes: make(map[string]string),
	}
}

// containerHeld suma las reservas activas del contenedor para el producto, excluyendo excludeID.
func (b *reservationBook) containerHeld(containerID, product, excludeID string) int64 {
	var held int64
	for _, r := range b.byID {
		if r.ID == excludeID || !r.Status.Active() {
			continue
		}
		if r.Source == entity.SourceContainer && r.SourceID == containerID && r.Product == product {
			held += r.Quantity
		}
	}
	return held
}

// activeFrom reservas activas de un origen, ordenadas de la más antigua a la más reciente.
func (b *reservationBook) activeFrom(source entity.Source, sourceID, product string) []*entity.Reservation {
	var out []*entity.Reservation
	for _, r := range b.byID {
		if !r.Status.Active() || r.Source != source || r.SourceID != sourceID {
			continue
		}
		if product != "" && r.Product != product {
			continue
		}
		out = append(out, r)
	}
	sortOldestFirst(out)
	return out
}

// dropQuote libera la cotización cuando la reserva deja de estar activa.
func (b *reservationBook) dropQuote(r *entity.Reservation) {
	if b.quotes[r.QuoteNumber] == r.ID {
		delete(b.quotes, r.QuoteNumber)
	}
}

func sortOldestFirst(list []*entity.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// Restore carga el estado persistido en un motor recién creado. Verifica que cada línea cumpla
// 0 <= separadas <= total, que las reservas de contenedor quepan en sus lotes y que no haya
// cotizaciones activas repetidas. Las diferencias entre separadas y reservas que deja un traslado
// se aceptan; Drift las reporta.
func (e *Engine) Restore(lines []entity.StockLine, containers []*entity.Container, reservations []*entity.Reservation) error {
	held := make(map[string]int64)
	quotes := make(map[string]string)
	for _, r := range reservations {
		if r.Deleted || !r.Status.Active() {
			continue
		}
		if other, dup := quotes[r.QuoteNumber]; dup {
			return fmt.Errorf("%w: cotización %s activa en %s y %s", domain.ErrInvariantViolation, r.QuoteNumber, other, r.ID)
		}
		quotes[r.QuoteNumber] = r.ID
		if r.Source == entity.SourceContainer {
			held[r.SourceID+"\x00"+r.Product] += r.Quantity
		}
	}

	byKey := make(map[string]*entity.StockLine, len(lines))
	for i := range lines {
		s := lines[i]
		if !s.Consistent() {
			return fmt.Errorf("%w: línea %s/%s total %d separadas %d", domain.ErrInvariantViolation, s.Product, s.Location, s.Total, s.Reserved)
		}
		byKey[stockKey(s.Product, s.Location)] = &s
	}

	byID := make(map[string]*entity.Container, len(containers))
	lots := make(map[string]int64)
	for _, c := range containers {
		byID[c.ID] = c.Clone()
		if c.Status == entity.ContainerArrived {
			continue
		}
		for _, lot := range c.Lots {
			lots[c.ID+"\x00"+lot.Product] = lot.Quantity
		}
	}
	for k, sum := range held {
		qty, ok := lots[k]
		if !ok || sum > qty {
			return fmt.Errorf("%w: reservas de contenedor %q exceden el lote o el contenedor ya llegó", domain.ErrInvariantViolation, k)
		}
	}

	e.Ledger.mu.Lock()
	e.Ledger.lines = byKey
	e.Ledger.mu.Unlock()

	e.Containers.mu.Lock()
	e.Containers.containers = byID
	e.Containers.mu.Unlock()

	e.book.mu.Lock()
	e.book.byID = make(map[string]*entity.Reservation, len(reservations))
	for _, r := range reservations {
		if r.Deleted {
			continue
		}
		e.book.byID[r.ID] = r.Clone()
	}
	e.book.quotes = quotes
	e.book.mu.Unlock()
	return nil
}

// Drift línea cuyas separadas difieren de la suma de reservas activas que apuntan a ella.
type Drift struct {
	Product  string
	Location entity.LocationKind
	Reserved int64
	Held     int64
}

// Drift compara cada línea con sus reservas activas. Tras un traslado cuyas reservas no
// sumaron exactamente la parte proporcional, la diferencia queda aquí.
func (e *Engine) Drift() []Drift {
	lines := e.Ledger.Lines()
	e.book.mu.Lock()
	held := make(map[string]int64)
	for _, r := range e.book.byID {
		if loc, ok := r.Source.Location(); ok && r.Status.Active() {
			held[stockKey(r.Product, loc)] += r.Quantity
		}
	}
	e.book.mu.Unlock()

	var out []Drift
	for _, s := range lines {
		if h := held[stockKey(s.Product, s.Location)]; h != s.Reserved {
			out = append(out, Drift{Product: s.Product, Location: s.Location, Reserved: s.Reserved, Held: h})
		}
	}
	return out
}
