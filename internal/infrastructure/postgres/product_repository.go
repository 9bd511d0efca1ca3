package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo descriptivo sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Upsert crea o actualiza marca y línea del producto.
func (r *ProductRepo) Upsert(ctx context.Context, p entity.ProductInfo) error {
	query := `
		INSERT INTO products (name, brand, line, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name)
		DO UPDATE SET brand = EXCLUDED.brand, line = EXCLUDED.line, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, p.Name, nullString(p.Brand), nullString(p.Line)); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Get obtiene un producto por nombre. nil, nil si no existe.
func (r *ProductRepo) Get(ctx context.Context, name string) (*entity.ProductInfo, error) {
	var p entity.ProductInfo
	var brand, line *string
	err := r.q.QueryRow(ctx, `SELECT name, brand, line FROM products WHERE name = $1`, name).Scan(&p.Name, &brand, &line)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.Brand, p.Line = fromNull(brand), fromNull(line)
	return &p, nil
}

// List devuelve el catálogo ordenado por nombre.
func (r *ProductRepo) List(ctx context.Context) ([]entity.ProductInfo, error) {
	rows, err := r.q.Query(ctx, `SELECT name, brand, line FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductInfo
	for rows.Next() {
		var p entity.ProductInfo
		var brand, line *string
		if err := rows.Scan(&p.Name, &brand, &line); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Brand, p.Line = fromNull(brand), fromNull(line)
		list = append(list, p)
	}
	return list, rows.Err()
}
