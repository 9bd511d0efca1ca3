package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository catálogo en memoria, usado cuando la BD está deshabilitada.
type ProductRepository struct {
	mutex    sync.RWMutex
	products map[string]entity.ProductInfo
}

// NewProductRepository crea un catálogo vacío.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]entity.ProductInfo)}
}

func (r *ProductRepository) Upsert(ctx context.Context, p entity.ProductInfo) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.products[p.Name] = p
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, name string) (*entity.ProductInfo, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, ok := r.products[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]entity.ProductInfo, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]entity.ProductInfo, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
