package dto

import "github.com/jhoicas/reservas-api/internal/domain/entity"

// ProductRequest body para PUT /api/products/:name.
type ProductRequest struct {
	Brand string `json:"brand"`
	Line  string `json:"line"`
}

// ProductResponse metadatos de catálogo de un producto.
type ProductResponse struct {
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Line  string `json:"line,omitempty"`
}

// FromProduct convierte metadatos de catálogo.
func FromProduct(p entity.ProductInfo) ProductResponse {
	return ProductResponse{Name: p.Name, Brand: p.Brand, Line: p.Line}
}
