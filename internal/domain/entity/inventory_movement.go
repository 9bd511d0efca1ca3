package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del diario de inventario.
const (
	MovementTypeRESERVE     = "RESERVE"      // separadas += cantidad
	MovementTypeRELEASE     = "RELEASE"      // separadas -= cantidad
	MovementTypeARRIVAL     = "ARRIVAL"      // llegada de contenedor a Zona Franca
	MovementTypeTRANSFEROUT = "TRANSFER_OUT" // salida de Zona Franca
	MovementTypeTRANSFERIN  = "TRANSFER_IN"  // entrada a Bodega
	MovementTypeDISPATCH    = "DISPATCH"     // despacho (total y separadas bajan juntos)
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste manual del total
)

// InventoryMovement asiento del diario append-only. Location vacío significa que el
// movimiento afecta un contenedor (Reference lleva su ID).
type InventoryMovement struct {
	ID            string
	TransactionID string
	Type          string
	Product       string
	Location      LocationKind
	Quantity      int64           // cambio en total (signo incluido)
	ReservedDelta int64           // cambio en separadas (signo incluido)
	Ratio         decimal.Decimal // proporción separadas/total usada en traslados
	Reference     string          // reserva, contenedor o cotización
	CreatedBy     string
	CreatedAt     time.Time
}
