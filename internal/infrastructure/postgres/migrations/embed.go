// Package migrations esquema del espejo de reservas, embebido en el binario.
package migrations

import "embed"

// FS archivos NNN_*.sql, aplicados en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
