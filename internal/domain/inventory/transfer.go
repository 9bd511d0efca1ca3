package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// Selection política para elegir qué reservas de Zona Franca acompañan un traslado.
type Selection string

const (
	SelectionOldestFirst Selection = "oldest_first"
	SelectionExplicit    Selection = "explicit"
	SelectionNone        Selection = "none"
)

// Valid indica si la política es conocida.
func (s Selection) Valid() bool {
	return s == SelectionOldestFirst || s == SelectionExplicit || s == SelectionNone
}

// TransferRequest traslado de Quantity unidades de Product desde Zona Franca a Bodega.
type TransferRequest struct {
	Product        string
	Quantity       int64
	Selection      Selection
	ReservationIDs []string // solo con SelectionExplicit, en el orden dado
}

// TransferResult resultado del traslado. Warning no vacío si las reservas reetiquetadas
// no suman exactamente ReservedToMove. Blocked lista las reservas de Zona Franca que ya no
// caben en sus separadas: rechazarlas o borrarlas falla hasta que se ajuste la línea.
type TransferResult struct {
	Product        string
	Quantity       int64
	ReservedToMove int64
	Ratio          decimal.Decimal
	Moved          []string
	MovedQuantity  int64
	Warning        string
	Blocked        []string
	Lines          []entity.StockLine
	Relabeled      []*entity.Reservation
}

// TransferEngine mueve stock de Zona Franca a Bodega llevando la parte proporcional de separadas.
type TransferEngine struct {
	locks  *keyLocks
	ledger *StockLedger
	book   *reservationBook
	now    func() time.Time
}

// Transfer toma las dos claves en orden, valida y aplica el movimiento completo o nada.
func (t *TransferEngine) Transfer(req TransferRequest) (*TransferResult, error) {
	product := entity.NormalizeProduct(req.Product)
	if product == "" || req.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	selection := req.Selection
	if selection == "" {
		selection = SelectionOldestFirst
	}
	if !selection.Valid() {
		return nil, fmt.Errorf("%w: selección %q", domain.ErrInvalidInput, req.Selection)
	}
	if selection == SelectionExplicit && len(req.ReservationIDs) == 0 {
		return nil, fmt.Errorf("%w: la selección explícita requiere reservas", domain.ErrInvalidInput)
	}

	unlock := t.locks.Lock(stockKey(product, entity.LocationFreeZone), stockKey(product, entity.LocationWarehouse))
	defer unlock()

	fz := t.ledger.line(product, entity.LocationFreeZone)
	wh := t.ledger.line(product, entity.LocationWarehouse)
	if req.Quantity > fz.Total {
		return nil, fmt.Errorf("%w: %s en Zona Franca total %d, trasladar %d",
			domain.ErrInsufficientStock, product, fz.Total, req.Quantity)
	}
	if overflows(wh.Total, req.Quantity) {
		return nil, fmt.Errorf("%w: trasladar %d desborda el total de %s en Bodega",
			domain.ErrInvalidInput, req.Quantity, product)
	}
	toMove, ratio := ReservedShare(req.Quantity, fz.Reserved, fz.Total)
	if toMove > fz.Reserved {
		return nil, fmt.Errorf("%w: trasladar %d separadas con %d en Zona Franca",
			domain.ErrInvariantViolation, toMove, fz.Reserved)
	}
	nextFZ := entity.StockLine{Total: fz.Total - req.Quantity, Reserved: fz.Reserved - toMove}
	nextWH := entity.StockLine{Total: wh.Total + req.Quantity, Reserved: wh.Reserved + toMove}
	if !nextFZ.Consistent() || !nextWH.Consistent() {
		return nil, fmt.Errorf("%w: traslado de %d %s dejaría Zona Franca %d/%d y Bodega %d/%d",
			domain.ErrInvariantViolation, req.Quantity, product,
			nextFZ.Total, nextFZ.Reserved, nextWH.Total, nextWH.Reserved)
	}

	t.book.mu.Lock()
	defer t.book.mu.Unlock()

	chosen, err := t.choose(product, selection, req.ReservationIDs, toMove)
	if err != nil {
		return nil, err
	}

	fz.Total, fz.Reserved = nextFZ.Total, nextFZ.Reserved
	wh.Total, wh.Reserved = nextWH.Total, nextWH.Reserved
	t.ledger.touch(fz)
	t.ledger.touch(wh)

	res := &TransferResult{
		Product:        product,
		Quantity:       req.Quantity,
		ReservedToMove: toMove,
		Ratio:          ratio,
		Lines:          []entity.StockLine{*fz, *wh},
	}
	now := t.now()
	for _, r := range chosen {
		r.Source = entity.SourceWarehouse
		r.SourceID = entity.LocationTag(entity.LocationWarehouse)
		r.UpdatedAt = now
		r.Version++
		res.Moved = append(res.Moved, r.ID)
		res.MovedQuantity += r.Quantity
		res.Relabeled = append(res.Relabeled, r.Clone())
	}
	if res.MovedQuantity != toMove {
		for _, r := range t.book.activeFrom(entity.SourceFreeZone, entity.LocationTag(entity.LocationFreeZone), product) {
			if r.Quantity > fz.Reserved {
				res.Blocked = append(res.Blocked, r.ID)
			}
		}
		res.Warning = fmt.Sprintf("las reservas reetiquetadas suman %d y se trasladaron %d separadas",
			res.MovedQuantity, toMove)
		if len(res.Blocked) > 0 {
			res.Warning += fmt.Sprintf("; no se pueden liberar: %s", strings.Join(res.Blocked, ", "))
		}
	}
	return res, nil
}

// choose reservas activas de Zona Franca del producto, completas, sin pasar de budget.
// El llamador tiene las claves y book.mu.
func (t *TransferEngine) choose(product string, selection Selection, ids []string, budget int64) ([]*entity.Reservation, error) {
	fzTag := entity.LocationTag(entity.LocationFreeZone)
	switch selection {
	case SelectionNone:
		return nil, nil
	case SelectionExplicit:
		var out []*entity.Reservation
		var sum int64
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			r, ok := t.book.byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
			}
			if !r.Status.Active() || r.Source != entity.SourceFreeZone || r.SourceID != fzTag || r.Product != product {
				return nil, fmt.Errorf("%w: la reserva %s no es una reserva activa de %s en Zona Franca",
					domain.ErrInvalidState, id, product)
			}
			if sum+r.Quantity > budget {
				return nil, fmt.Errorf("%w: las reservas elegidas superan las %d separadas a trasladar",
					domain.ErrInvalidInput, budget)
			}
			sum += r.Quantity
			out = append(out, r)
		}
		return out, nil
	}

	var out []*entity.Reservation
	var sum int64
	for _, r := range t.book.activeFrom(entity.SourceFreeZone, fzTag, product) {
		if sum+r.Quantity > budget {
			continue
		}
		sum += r.Quantity
		out = append(out, r)
		if sum == budget {
			break
		}
	}
	return out, nil
}
