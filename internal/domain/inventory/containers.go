package inventory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ContainerRegistry contenedores en tránsito. Al llegar, el contenido se suma a Zona Franca
// y las reservas del contenedor pasan a apuntar a Zona Franca.
type ContainerRegistry struct {
	locks  *keyLocks
	ledger *StockLedger
	book   *reservationBook
	now    func() time.Time

	mu         sync.RWMutex // protege el mapa; los campos se mutan con la clave del contenedor
	containers map[string]*entity.Container
}

func (r *ContainerRegistry) get(id string) *entity.Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.containers[id]
}

func (r *ContainerRegistry) touch(c *entity.Container) {
	c.Version++
}

// CreateContainer registra un contenedor en tránsito. Productos repetidos se suman en un lote.
func (r *ContainerRegistry) CreateContainer(id string, eta time.Time, lots []entity.ContainerLot) (*entity.Container, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(lots) == 0 {
		return nil, domain.ErrInvalidInput
	}
	merged := make([]entity.ContainerLot, 0, len(lots))
	index := make(map[string]int, len(lots))
	for _, lot := range lots {
		product := entity.NormalizeProduct(lot.Product)
		if product == "" || lot.Quantity <= 0 {
			return nil, fmt.Errorf("%w: lote %q cantidad %d", domain.ErrInvalidInput, lot.Product, lot.Quantity)
		}
		if i, ok := index[product]; ok {
			if overflows(merged[i].Quantity, lot.Quantity) {
				return nil, fmt.Errorf("%w: lote %q desborda al sumar %d", domain.ErrInvalidInput, product, lot.Quantity)
			}
			merged[i].Quantity += lot.Quantity
			continue
		}
		index[product] = len(merged)
		merged = append(merged, entity.ContainerLot{Product: product, Quantity: lot.Quantity})
	}

	unlock := r.locks.Lock(containerKey(id))
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.containers[id]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateContainer, id)
	}
	c := &entity.Container{
		ID:        id,
		ETA:       eta,
		Lots:      merged,
		Status:    entity.ContainerInTransit,
		CreatedAt: r.now(),
		Version:   1,
	}
	r.containers[id] = c
	return c.Clone(), nil
}

// Container instantánea de un contenedor.
func (r *ContainerRegistry) Container(id string) (*entity.Container, error) {
	c := r.get(id)
	if c == nil {
		return nil, fmt.Errorf("%w: contenedor %s", domain.ErrNotFound, id)
	}
	unlock := r.locks.Lock(containerKey(id))
	defer unlock()
	return c.Clone(), nil
}

// Containers lista los contenedores ordenados por ETA.
func (r *ContainerRegistry) Containers() []*entity.Container {
	r.mu.RLock()
	ids := make([]string, 0, len(r.containers))
	for id := range r.containers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	out := make([]*entity.Container, 0, len(ids))
	for _, id := range ids {
		if c, err := r.Container(id); err == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ETA.Equal(out[j].ETA) {
			return out[i].ETA.Before(out[j].ETA)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AvailableInContainer cantidad del lote menos las reservas activas contra el contenedor.
// Tras la llegada ya no aplica (ErrAlreadyArrived): la disponibilidad está en Zona Franca.
func (r *ContainerRegistry) AvailableInContainer(id, product string) (int64, error) {
	product = entity.NormalizeProduct(product)
	c := r.get(id)
	if c == nil {
		return 0, fmt.Errorf("%w: contenedor %s", domain.ErrNotFound, id)
	}
	unlock := r.locks.Lock(containerKey(id))
	defer unlock()
	if c.Status == entity.ContainerArrived {
		return 0, fmt.Errorf("%w: %s", domain.ErrAlreadyArrived, id)
	}
	r.book.mu.Lock()
	defer r.book.mu.Unlock()
	return c.LotQuantity(product) - r.book.containerHeld(id, product, ""), nil
}

// availableLocked igual que AvailableInContainer; el llamador tiene la clave del contenedor y book.mu.
func (r *ContainerRegistry) availableLocked(c *entity.Container, product, excludeID string) (int64, error) {
	if c.Status == entity.ContainerArrived {
		return 0, fmt.Errorf("%w: %s", domain.ErrAlreadyArrived, c.ID)
	}
	return c.LotQuantity(product) - r.book.containerHeld(c.ID, product, excludeID), nil
}

// MarkDelayed InTransit -> Delayed (o actualiza la ETA si ya estaba demorado).
func (r *ContainerRegistry) MarkDelayed(id string, eta time.Time) (*entity.Container, error) {
	return r.setStatus(id, func(c *entity.Container) error {
		c.Status = entity.ContainerDelayed
		if !eta.IsZero() {
			c.ETA = eta
		}
		return nil
	})
}

// ResumeTransit Delayed -> InTransit.
func (r *ContainerRegistry) ResumeTransit(id string) (*entity.Container, error) {
	return r.setStatus(id, func(c *entity.Container) error {
		if c.Status != entity.ContainerDelayed {
			return fmt.Errorf("%w: contenedor %s en %s", domain.ErrInvalidTransition, id, c.Status)
		}
		c.Status = entity.ContainerInTransit
		return nil
	})
}

func (r *ContainerRegistry) setStatus(id string, fn func(*entity.Container) error) (*entity.Container, error) {
	c := r.get(id)
	if c == nil {
		return nil, fmt.Errorf("%w: contenedor %s", domain.ErrNotFound, id)
	}
	unlock := r.locks.Lock(containerKey(id))
	defer unlock()
	if c.Status == entity.ContainerArrived {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyArrived, id)
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	r.touch(c)
	return c.Clone(), nil
}

// MarkArrived suma cada lote al total de Zona Franca y, en el mismo paso, sube sus separadas
// con las reservas activas del contenedor, que se reetiquetan a Zona Franca sin volver a reservar.
func (r *ContainerRegistry) MarkArrived(id string, at time.Time) (*Outcome, error) {
	c := r.get(id)
	if c == nil {
		return nil, fmt.Errorf("%w: contenedor %s", domain.ErrNotFound, id)
	}
	// los lotes no cambian tras la creación; se pueden leer antes de tomar las claves
	keys := []string{containerKey(id)}
	for _, lot := range c.Lots {
		keys = append(keys, stockKey(lot.Product, entity.LocationFreeZone))
	}
	unlock := r.locks.Lock(keys...)
	defer unlock()

	if c.Status == entity.ContainerArrived {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyArrived, id)
	}

	r.book.mu.Lock()
	defer r.book.mu.Unlock()

	pending := r.book.activeFrom(entity.SourceContainer, id, "")
	held := make(map[string]int64)
	for _, res := range pending {
		if !c.HasProduct(res.Product) {
			return nil, fmt.Errorf("%w: reserva %s de %s no está en el contenedor %s",
				domain.ErrInvariantViolation, res.ID, res.Product, id)
		}
		held[res.Product] += res.Quantity
	}

	lines := make([]*entity.StockLine, len(c.Lots))
	for i, lot := range c.Lots {
		s := r.ledger.line(lot.Product, entity.LocationFreeZone)
		if overflows(s.Total, lot.Quantity) {
			return nil, fmt.Errorf("%w: llegada de %s desborda el total de %s en Zona Franca",
				domain.ErrInvalidInput, id, lot.Product)
		}
		next := entity.StockLine{Total: s.Total + lot.Quantity, Reserved: s.Reserved + held[lot.Product]}
		if held[lot.Product] > lot.Quantity || !next.Consistent() {
			return nil, fmt.Errorf("%w: llegada de %s dejaría %s con total %d separadas %d",
				domain.ErrInvariantViolation, id, lot.Product, next.Total, next.Reserved)
		}
		lines[i] = s
	}

	out := &Outcome{}
	for i, lot := range c.Lots {
		s := lines[i]
		s.Total += lot.Quantity
		s.Reserved += held[lot.Product]
		r.ledger.touch(s)
		out.Lines = append(out.Lines, *s)
	}
	now := r.now()
	for _, res := range pending {
		res.Source = entity.SourceFreeZone
		res.SourceID = entity.LocationTag(entity.LocationFreeZone)
		res.UpdatedAt = now
		res.Version++
		out.Relabeled = append(out.Relabeled, res.Clone())
	}
	if at.IsZero() {
		at = now
	}
	c.Status = entity.ContainerArrived
	c.ArrivedAt = &at
	r.touch(c)
	out.Container = c.Clone()
	return out, nil
}
