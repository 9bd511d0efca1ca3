package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestReadStock_SumaRepetidosYNormaliza(t *testing.T) {
	csv := "producto;bodega;zona_franca;marca;linea\n" +
		"Carrara ;1.200;300;Italstone;Clásica\n" +
		"Carrara;10;;;\n" +
		"Black Galaxy;0;50\n" +
		";5;5\n"

	rows, err := readStock(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Black Galaxy", rows[0].product)
	assert.Equal(t, int64(50), rows[0].freeZone)

	assert.Equal(t, "Carrara", rows[1].product)
	assert.Equal(t, int64(1210), rows[1].warehouse)
	assert.Equal(t, int64(300), rows[1].freeZone)
	assert.Equal(t, "Italstone", rows[1].brand)
}

func TestReadStock_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("producto;bodega;zona_franca\nMármol Crema;7;0\n")
	require.NoError(t, err)

	rows, err := readStock(transform.NewReader(strings.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mármol Crema", rows[0].product)
}

func TestReadStock_CantidadInvalida(t *testing.T) {
	_, err := readStock(strings.NewReader("producto;bodega;zona_franca\nCarrara;-3;0\n"))
	assert.Error(t, err)

	_, err = readStock(strings.NewReader("producto;bodega;zona_franca\nCarrara;abc;0\n"))
	assert.Error(t, err)
}

func TestWriteStockSQL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStockSQL(&buf, []stockRow{
		{product: "D'Angelo", warehouse: 5},
		{product: "Tan", freeZone: 9, brand: "Andina"},
	}))
	sql := buf.String()

	assert.Contains(t, sql, "('D''Angelo', 'Warehouse', 5, 0, 1)")
	assert.NotContains(t, sql, "('D''Angelo', 'FreeZone'")
	assert.Contains(t, sql, "('Tan', 'FreeZone', 9, 0, 1)")
	assert.Contains(t, sql, "INSERT INTO products (name, brand, line) VALUES ('Tan', 'Andina', '')")
}
