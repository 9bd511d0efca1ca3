package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

func TestLedger_LineNuevaEnCero(t *testing.T) {
	e := newTestEngine(t)
	avail, err := e.Ledger.Available("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(0), avail)
}

func TestLedger_ReserveYRelease(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)

	s, err := e.Ledger.Reserve("Carrara", entity.LocationWarehouse, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(30), s.Reserved)
	assert.Equal(t, int64(70), s.Available())

	s, err = e.Ledger.Release("Carrara", entity.LocationWarehouse, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Reserved)
}

func TestLedger_ReserveSinStock(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 10)

	_, err := e.Ledger.Reserve("Carrara", entity.LocationWarehouse, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
}

func TestLedger_ReleaseDeMasEsViolacion(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 10)
	_, err := e.Ledger.Reserve("Carrara", entity.LocationWarehouse, 5)
	require.NoError(t, err)

	_, err = e.Ledger.Release("Carrara", entity.LocationWarehouse, 6)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, int64(5), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
}

func TestLedger_RemoveTotal(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Tan", entity.LocationFreeZone, 50)
	_, err := e.Ledger.Reserve("Tan", entity.LocationFreeZone, 20)
	require.NoError(t, err)

	_, err = e.Ledger.RemoveTotal("Tan", entity.LocationFreeZone, 51)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// dejaría separadas por encima del total
	_, err = e.Ledger.RemoveTotal("Tan", entity.LocationFreeZone, 40)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	s, err := e.Ledger.RemoveTotal("Tan", entity.LocationFreeZone, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(20), s.Total)
	assert.Equal(t, int64(20), s.Reserved)
}

func TestLedger_EntradaInvalida(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Ledger.AddTotal("  ", entity.LocationWarehouse, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.Ledger.AddTotal("Carrara", entity.LocationKind("Patio"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_NombreNormalizado(t *testing.T) {
	e := newTestEngine(t)
	// "Café" compuesto y descompuesto son el mismo producto
	seedStock(t, e, "Café", entity.LocationWarehouse, 10)
	seedStock(t, e, " Cafe\u0301 ", entity.LocationWarehouse, 5)

	assert.Len(t, e.Ledger.Lines(), 1)
	assert.Equal(t, int64(15), line(t, e, "Café", entity.LocationWarehouse).Total)
}

func TestLedger_VersionAumenta(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 10)
	v1 := line(t, e, "Carrara", entity.LocationWarehouse).Version
	_, err := e.Ledger.Reserve("Carrara", entity.LocationWarehouse, 1)
	require.NoError(t, err)
	assert.Greater(t, line(t, e, "Carrara", entity.LocationWarehouse).Version, v1)
}

func TestLedger_AddTotalDesborde(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, math.MaxInt64)

	_, err := e.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	s := line(t, e, "Carrara", entity.LocationWarehouse)
	assert.Equal(t, int64(math.MaxInt64), s.Total)
	assert.True(t, s.Consistent())
}
