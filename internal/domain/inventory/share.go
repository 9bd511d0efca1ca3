package inventory

import "github.com/shopspring/decimal"

// ratioPrecision decimales con que se reporta la proporción separadas/total.
const ratioPrecision = 6

// ReservedShare calcula cuántas unidades separadas acompañan un traslado de qty unidades
// desde una línea con total y reserved:
// SeparadasATrasladar = redondeo-mitad-arriba(qty * reserved / total)
// El cálculo es exacto (sin float); ratio es reserved/total para el diario.
func ReservedShare(qty, reserved, total int64) (toMove int64, ratio decimal.Decimal) {
	if total <= 0 {
		return 0, decimal.Zero
	}
	den := decimal.NewFromInt(total)
	ratio = decimal.NewFromInt(reserved).DivRound(den, ratioPrecision)
	toMove = decimal.NewFromInt(qty).Mul(decimal.NewFromInt(reserved)).DivRound(den, 0).IntPart()
	return toMove, ratio
}
