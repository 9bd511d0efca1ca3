package entity

// LocationKind identifica una ubicación física estacionaria con su propio StockLine.
type LocationKind string

const (
	LocationWarehouse LocationKind = "Warehouse" // Bodega
	LocationFreeZone  LocationKind = "FreeZone"  // Zona Franca
)

// Valid indica si la ubicación es una de las conocidas.
func (l LocationKind) Valid() bool {
	return l == LocationWarehouse || l == LocationFreeZone
}

// Source origen contra el que se hace una reserva.
type Source string

const (
	SourceContainer Source = "Container"
	SourceWarehouse Source = "Warehouse"
	SourceFreeZone  Source = "FreeZone"
)

// Valid indica si el origen es uno de los conocidos.
func (s Source) Valid() bool {
	return s == SourceContainer || s == SourceWarehouse || s == SourceFreeZone
}

// Location devuelve la LocationKind del origen. ok=false para contenedores.
func (s Source) Location() (LocationKind, bool) {
	switch s {
	case SourceWarehouse:
		return LocationWarehouse, true
	case SourceFreeZone:
		return LocationFreeZone, true
	}
	return "", false
}

// SourceFor devuelve el origen de reserva que apunta a la ubicación dada.
func SourceFor(loc LocationKind) Source {
	if loc == LocationFreeZone {
		return SourceFreeZone
	}
	return SourceWarehouse
}

// LocationTag es el SourceID usado por reservas contra una ubicación (no contenedor).
func LocationTag(loc LocationKind) string {
	return string(loc)
}
