package entity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeProduct devuelve la clave canónica de un nombre de producto:
// sin espacios laterales y en forma Unicode NFC, para que "Mármol" escrito
// con acento compuesto o descompuesto apunte al mismo StockLine.
func NormalizeProduct(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ProductInfo metadatos descriptivos de un producto. Marca y línea no forman
// parte de la identidad del StockLine; la clave es solo Name.
type ProductInfo struct {
	Name  string
	Brand string
	Line  string
}
