package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var _ repository.StockLineRepository = (*StockLineRepo)(nil)

// StockLineRepo espejo de stock_lines sobre PostgreSQL (usable con pool o tx).
type StockLineRepo struct {
	q Querier
}

// NewStockLineRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLineRepository(q Querier) *StockLineRepo {
	return &StockLineRepo{q: q}
}

// Upsert inserta o actualiza la línea. Una versión vieja no pisa a una más nueva.
func (r *StockLineRepo) Upsert(ctx context.Context, line entity.StockLine) error {
	query := `
		INSERT INTO stock_lines (product, location, total, reserved, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product, location)
		DO UPDATE SET total = EXCLUDED.total, reserved = EXCLUDED.reserved,
			version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
		WHERE stock_lines.version < EXCLUDED.version`
	_, err := r.q.Exec(ctx, query,
		line.Product, string(line.Location), line.Total, line.Reserved, line.Version, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock line: %w", err)
	}
	return nil
}

// List devuelve todas las líneas.
func (r *StockLineRepo) List(ctx context.Context) ([]entity.StockLine, error) {
	query := `
		SELECT product, location, total, reserved, version, updated_at
		FROM stock_lines ORDER BY product, location`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock lines: %w", err)
	}
	defer rows.Close()
	var list []entity.StockLine
	for rows.Next() {
		var s entity.StockLine
		var loc string
		if err := rows.Scan(&s.Product, &loc, &s.Total, &s.Reserved, &s.Version, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock line: %w", err)
		}
		s.Location = entity.LocationKind(loc)
		list = append(list, s)
	}
	return list, rows.Err()
}
