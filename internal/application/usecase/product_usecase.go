package usecase

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

// ProductUseCase catálogo descriptivo de productos. Marca y línea no afectan el libro de stock.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Upsert crea o actualiza los metadatos de un producto por su nombre canónico.
func (uc *ProductUseCase) Upsert(ctx context.Context, name string, in dto.ProductRequest) (*dto.ProductResponse, error) {
	name = entity.NormalizeProduct(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	p := entity.ProductInfo{Name: name, Brand: in.Brand, Line: in.Line}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	out := dto.FromProduct(p)
	return &out, nil
}

// Get obtiene un producto. ErrNotFound si el catálogo no lo conoce.
func (uc *ProductUseCase) Get(ctx context.Context, name string) (*dto.ProductResponse, error) {
	p, err := uc.repo.Get(ctx, entity.NormalizeProduct(name))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromProduct(*p)
	return &out, nil
}

// List lista el catálogo.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProduct(p))
	}
	return items, nil
}

// Decorate completa marca y línea de las líneas de stock cuyo producto está en el catálogo.
// Un fallo del catálogo deja las líneas sin decorar.
func (uc *ProductUseCase) Decorate(ctx context.Context, lines []dto.StockLineResponse) []dto.StockLineResponse {
	list, err := uc.repo.List(ctx)
	if err != nil || len(list) == 0 {
		return lines
	}
	byName := make(map[string]entity.ProductInfo, len(list))
	for _, p := range list {
		byName[p.Name] = p
	}
	for i := range lines {
		if p, ok := byName[lines[i].Product]; ok {
			lines[i].Brand = p.Brand
			lines[i].Line = p.Line
		}
	}
	return lines
}
