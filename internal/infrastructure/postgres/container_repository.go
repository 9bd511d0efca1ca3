package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var _ repository.ContainerRepository = (*ContainerRepo)(nil)

// ContainerRepo espejo de containers y container_lots.
type ContainerRepo struct {
	q Querier
}

// NewContainerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContainerRepository(q Querier) *ContainerRepo {
	return &ContainerRepo{q: q}
}

// Upsert guarda el contenedor. Los lotes son inmutables: se insertan solo la primera vez.
func (r *ContainerRepo) Upsert(ctx context.Context, c *entity.Container) error {
	query := `
		INSERT INTO containers (id, eta, status, created_at, arrived_at, version)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET eta = EXCLUDED.eta, status = EXCLUDED.status,
			arrived_at = EXCLUDED.arrived_at, version = EXCLUDED.version
		WHERE containers.version < EXCLUDED.version`
	_, err := r.q.Exec(ctx, query, c.ID, c.ETA, string(c.Status), c.CreatedAt, c.ArrivedAt, c.Version)
	if err != nil {
		return fmt.Errorf("upsert container: %w", err)
	}
	lotQuery := `
		INSERT INTO container_lots (container_id, product, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (container_id, product) DO NOTHING`
	for _, lot := range c.Lots {
		if _, err := r.q.Exec(ctx, lotQuery, c.ID, lot.Product, lot.Quantity); err != nil {
			return fmt.Errorf("insert container lot: %w", err)
		}
	}
	return nil
}

// List devuelve los contenedores con sus lotes.
func (r *ContainerRepo) List(ctx context.Context) ([]*entity.Container, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, eta, status, created_at, arrived_at, version
		FROM containers ORDER BY eta, id`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	var list []*entity.Container
	byID := make(map[string]*entity.Container)
	for rows.Next() {
		var c entity.Container
		var status string
		if err := rows.Scan(&c.ID, &c.ETA, &status, &c.CreatedAt, &c.ArrivedAt, &c.Version); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan container: %w", err)
		}
		c.Status = entity.ContainerStatus(status)
		list = append(list, &c)
		byID[c.ID] = &c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	lots, err := r.q.Query(ctx, `
		SELECT container_id, product, quantity
		FROM container_lots ORDER BY container_id, product`)
	if err != nil {
		return nil, fmt.Errorf("list container lots: %w", err)
	}
	defer lots.Close()
	for lots.Next() {
		var id string
		var lot entity.ContainerLot
		if err := lots.Scan(&id, &lot.Product, &lot.Quantity); err != nil {
			return nil, fmt.Errorf("scan container lot: %w", err)
		}
		if c, ok := byID[id]; ok {
			c.Lots = append(c.Lots, lot)
		}
	}
	return list, lots.Err()
}
