package entity

import "time"

// StockLine contadores de un producto en una ubicación (Bodega o Zona Franca).
// Invariante: 0 <= Reserved <= Total en todo momento.
type StockLine struct {
	Product   string
	Location  LocationKind
	Total     int64
	Reserved  int64
	Version   int64 // se incrementa en cada mutación; usado por el espejo en BD
	UpdatedAt time.Time
}

// Available cantidad libre (Total - Reserved). Nunca se almacena.
func (s StockLine) Available() int64 {
	return s.Total - s.Reserved
}

// Consistent indica si el par Total/Reserved cumple la invariante.
func (s StockLine) Consistent() bool {
	return s.Reserved >= 0 && s.Reserved <= s.Total
}
