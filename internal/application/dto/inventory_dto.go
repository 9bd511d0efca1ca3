package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// StockLineResponse línea del libro con disponible calculado.
type StockLineResponse struct {
	Product   string    `json:"product"`
	Brand     string    `json:"brand,omitempty"`
	Line      string    `json:"line,omitempty"`
	Location  string    `json:"location"`
	Total     int64     `json:"total"`
	Reserved  int64     `json:"reserved"`
	Available int64     `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromStockLine convierte una línea del libro.
func FromStockLine(s entity.StockLine) StockLineResponse {
	return StockLineResponse{
		Product:   s.Product,
		Location:  string(s.Location),
		Total:     s.Total,
		Reserved:  s.Reserved,
		Available: s.Available(),
		UpdatedAt: s.UpdatedAt,
	}
}

// FromStockLines convierte varias líneas.
func FromStockLines(lines []entity.StockLine) []StockLineResponse {
	out := make([]StockLineResponse, 0, len(lines))
	for _, s := range lines {
		out = append(out, FromStockLine(s))
	}
	return out
}

// StockAdjustmentRequest body para POST /api/stock/adjustments. Delta positivo suma al total, negativo retira.
type StockAdjustmentRequest struct {
	Product  string `json:"product"`
	Location string `json:"location"`
	Delta    int64  `json:"delta"`
	Reason   string `json:"reason"`
}

// MovementResponse asiento del diario.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Product       string          `json:"product"`
	Location      string          `json:"location,omitempty"`
	Quantity      int64           `json:"quantity"`
	ReservedDelta int64           `json:"reserved_delta"`
	Ratio         decimal.Decimal `json:"ratio"`
	Reference     string          `json:"reference,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromMovements convierte asientos del diario.
func FromMovements(list []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			Type:          m.Type,
			Product:       m.Product,
			Location:      string(m.Location),
			Quantity:      m.Quantity,
			ReservedDelta: m.ReservedDelta,
			Ratio:         m.Ratio,
			Reference:     m.Reference,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}

// HealthResponse estado del servicio.
type HealthResponse struct {
	Status              string `json:"status"`
	Service             string `json:"service"`
	InvariantViolations int64  `json:"invariant_violations"`
	MirrorFailures      int64  `json:"mirror_failures"`
	Drift               int    `json:"drift"`
}
