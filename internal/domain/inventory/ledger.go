package inventory

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// StockLedger contadores total/separadas por producto y ubicación; única fuente de verdad
// de la disponibilidad. Cada línea se muta solo con su clave tomada.
type StockLedger struct {
	locks *keyLocks
	now   func() time.Time

	mu    sync.RWMutex // protege el mapa, no los contadores
	lines map[string]*entity.StockLine
}

func newStockLedger(locks *keyLocks, now func() time.Time) *StockLedger {
	return &StockLedger{locks: locks, now: now, lines: make(map[string]*entity.StockLine)}
}

// line obtiene (o crea en cero) la línea. El llamador debe tener la clave tomada para leer o mutar contadores.
func (l *StockLedger) line(product string, loc entity.LocationKind) *entity.StockLine {
	key := stockKey(product, loc)
	l.mu.RLock()
	s, ok := l.lines[key]
	l.mu.RUnlock()
	if ok {
		return s
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok = l.lines[key]; !ok {
		s = &entity.StockLine{Product: product, Location: loc}
		l.lines[key] = s
	}
	return s
}

// overflows indica si a+b no cabe en int64; a y b son no negativos.
func overflows(a, b int64) bool {
	return b > math.MaxInt64-a
}

func (l *StockLedger) touch(s *entity.StockLine) {
	s.Version++
	s.UpdatedAt = l.now()
}

func (l *StockLedger) reserveLocked(s *entity.StockLine, qty int64) error {
	if qty > s.Available() {
		return fmt.Errorf("%w: %s en %s disponible %d, solicitado %d",
			domain.ErrInsufficientStock, s.Product, s.Location, s.Available(), qty)
	}
	s.Reserved += qty
	l.touch(s)
	return nil
}

func (l *StockLedger) releaseLocked(s *entity.StockLine, qty int64) error {
	if qty > s.Reserved {
		return fmt.Errorf("%w: liberar %d de %s en %s con separadas %d",
			domain.ErrInvariantViolation, qty, s.Product, s.Location, s.Reserved)
	}
	s.Reserved -= qty
	l.touch(s)
	return nil
}

func (l *StockLedger) removeTotalLocked(s *entity.StockLine, qty int64) error {
	if qty > s.Total {
		return fmt.Errorf("%w: %s en %s total %d, retirar %d",
			domain.ErrInsufficientStock, s.Product, s.Location, s.Total, qty)
	}
	if s.Total-qty < s.Reserved {
		return fmt.Errorf("%w: retirar %d dejaría separadas %d sobre total %d en %s/%s",
			domain.ErrInvariantViolation, qty, s.Reserved, s.Total-qty, s.Product, s.Location)
	}
	s.Total -= qty
	l.touch(s)
	return nil
}

// mutate valida argumentos, toma la clave de la línea y aplica fn.
func (l *StockLedger) mutate(product string, loc entity.LocationKind, qty int64, fn func(*entity.StockLine) error) (entity.StockLine, error) {
	product = entity.NormalizeProduct(product)
	if product == "" || !loc.Valid() || qty <= 0 {
		return entity.StockLine{}, domain.ErrInvalidInput
	}
	unlock := l.locks.Lock(stockKey(product, loc))
	defer unlock()
	s := l.line(product, loc)
	if err := fn(s); err != nil {
		return *s, err
	}
	return *s, nil
}

// Available devuelve total - separadas; nunca negativo por la invariante.
func (l *StockLedger) Available(product string, loc entity.LocationKind) (int64, error) {
	s, err := l.Line(product, loc)
	if err != nil {
		return 0, err
	}
	return s.Available(), nil
}

// Line instantánea consistente de la línea (total y separadas leídos juntos).
func (l *StockLedger) Line(product string, loc entity.LocationKind) (entity.StockLine, error) {
	product = entity.NormalizeProduct(product)
	if product == "" || !loc.Valid() {
		return entity.StockLine{}, domain.ErrInvalidInput
	}
	unlock := l.locks.Lock(stockKey(product, loc))
	defer unlock()
	return *l.line(product, loc), nil
}

// Lines instantánea de todas las líneas conocidas, ordenadas por producto y ubicación.
func (l *StockLedger) Lines() []entity.StockLine {
	l.mu.RLock()
	keys := make([]string, 0, len(l.lines))
	for k := range l.lines {
		keys = append(keys, k)
	}
	l.mu.RUnlock()

	out := make([]entity.StockLine, 0, len(keys))
	for _, k := range keys {
		l.mu.RLock()
		s := l.lines[k]
		l.mu.RUnlock()
		unlock := l.locks.Lock(k)
		out = append(out, *s)
		unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// Reserve incrementa separadas; ErrInsufficientStock si qty supera lo disponible.
func (l *StockLedger) Reserve(product string, loc entity.LocationKind, qty int64) (entity.StockLine, error) {
	return l.mutate(product, loc, qty, func(s *entity.StockLine) error { return l.reserveLocked(s, qty) })
}

// Release decrementa separadas; ErrInvariantViolation si quedarían negativas.
func (l *StockLedger) Release(product string, loc entity.LocationKind, qty int64) (entity.StockLine, error) {
	return l.mutate(product, loc, qty, func(s *entity.StockLine) error { return l.releaseLocked(s, qty) })
}

// AddTotal suma unidades físicas a la línea; ErrInvalidInput si el total desbordaría.
func (l *StockLedger) AddTotal(product string, loc entity.LocationKind, qty int64) (entity.StockLine, error) {
	return l.mutate(product, loc, qty, func(s *entity.StockLine) error {
		if overflows(s.Total, qty) {
			return fmt.Errorf("%w: sumar %d a %s en %s con total %d desborda",
				domain.ErrInvalidInput, qty, s.Product, s.Location, s.Total)
		}
		s.Total += qty
		l.touch(s)
		return nil
	})
}

// RemoveTotal retira unidades físicas; ErrInsufficientStock si qty supera el total.
func (l *StockLedger) RemoveTotal(product string, loc entity.LocationKind, qty int64) (entity.StockLine, error) {
	return l.mutate(product, loc, qty, func(s *entity.StockLine) error { return l.removeTotalLocked(s, qty) })
}
