package repository

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ProductRepository catálogo descriptivo (marca, línea) por nombre canónico de producto.
type ProductRepository interface {
	Upsert(ctx context.Context, p entity.ProductInfo) error
	// Get devuelve nil, nil si el producto no está en el catálogo.
	Get(ctx context.Context, name string) (*entity.ProductInfo, error)
	List(ctx context.Context) ([]entity.ProductInfo, error)
}
