package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

func ptr[T any](v T) *T { return &v }

// Escenario A: crear y rechazar devuelve la disponibilidad.
func TestReservations_CreateYReject(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)

	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 30)
	assert.Equal(t, entity.ReservationPending, r.Status)
	assert.Equal(t, entity.LocationTag(entity.LocationWarehouse), r.SourceID)

	avail, err := e.Ledger.Available("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(70), avail)

	out, err := e.Reservations.Reject(r.ID, "cliente desiste")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationRejected, out.Reservation.Status)
	assert.Equal(t, "cliente desiste", out.Reservation.RejectionReason)

	avail, err = e.Ledger.Available("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(100), avail)
}

func TestReservations_CreateSinStock(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 10)
	_, err := e.Reservations.Create(inventory.CreateRequest{
		Customer: "Cliente", Product: "Carrara", Quantity: 11,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, e.Reservations.List(inventory.ReservationFilter{}))
}

func TestReservations_SourceIDNoCoincide(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 10)
	_, err := e.Reservations.Create(inventory.CreateRequest{
		Customer: "Cliente", Product: "Carrara", Quantity: 1,
		Source: entity.SourceWarehouse, SourceID: "FreeZone", QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReservations_ContenedorInexistente(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Reservations.Create(inventory.CreateRequest{
		Customer: "Cliente", Product: "Black", Quantity: 1,
		Source: entity.SourceContainer, SourceID: "NOPE", QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Escenario D: cotización repetida mientras la primera sigue activa.
func TestReservations_CotizacionDuplicada(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)
	first := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)

	_, err := e.Reservations.Create(inventory.CreateRequest{
		Customer: "Cliente", Product: "Carrara", Quantity: 5,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateQuote)
	assert.Equal(t, int64(10), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)

	// al rechazar la primera la cotización queda libre
	_, err = e.Reservations.Reject(first.ID, "")
	require.NoError(t, err)
	reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 5)
}

func TestReservations_EstadosTerminalesIdempotentes(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)

	_, err := e.Reservations.Reject(r.ID, "")
	require.NoError(t, err)
	before := line(t, e, "Carrara", entity.LocationWarehouse)

	_, err = e.Reservations.Reject(r.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = e.Reservations.Dispatch(r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = e.Reservations.Validate(r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	after := line(t, e, "Carrara", entity.LocationWarehouse)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Reserved, after.Reserved)
}

func TestReservations_DispatchDescuentaTotal(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)

	_, err := e.Reservations.Dispatch(r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Pending no se despacha")

	_, err = e.Reservations.Validate(r.ID)
	require.NoError(t, err)
	out, err := e.Reservations.Dispatch(r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationDispatched, out.Reservation.Status)

	s := line(t, e, "Carrara", entity.LocationWarehouse)
	assert.Equal(t, int64(90), s.Total)
	assert.Equal(t, int64(0), s.Reserved)

	_, err = e.Reservations.Dispatch(r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(90), line(t, e, "Carrara", entity.LocationWarehouse).Total)
}

func TestReservations_DispatchDesdeContenedor(t *testing.T) {
	e := newTestEngine(t)
	createContainer(t, e, "C1", entity.ContainerLot{Product: "Black", Quantity: 10})
	r := reserve(t, e, "Q1", "Black", entity.SourceContainer, "C1", 5)
	_, err := e.Reservations.Validate(r.ID)
	require.NoError(t, err)

	_, err = e.Reservations.Dispatch(r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReservations_CreateYDeleteRestauraSeparadas(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)
	reserve(t, e, "Q0", "Carrara", entity.SourceWarehouse, "", 7)
	before := line(t, e, "Carrara", entity.LocationWarehouse).Reserved

	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 25)
	out, err := e.Reservations.Delete(r.ID)
	require.NoError(t, err)
	assert.True(t, out.Reservation.Deleted)

	assert.Equal(t, before, line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
	_, err = e.Reservations.Get(r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservations_DeleteTerminalNoTocaLibro(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 100)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 25)
	_, err := e.Reservations.Reject(r.ID, "")
	require.NoError(t, err)

	out, err := e.Reservations.Delete(r.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Lines)
	assert.Equal(t, int64(0), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
}

// Escenario E: una edición sin stock no deja cambios parciales.
func TestReservations_EditSinStockNoMuta(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)

	_, err := e.Reservations.Edit(r.ID, inventory.EditRequest{Quantity: ptr(int64(1000))})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := e.Reservations.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Equal(t, entity.ReservationPending, got.Status)
	assert.Equal(t, r.Version, got.Version)
	assert.Equal(t, int64(10), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
}

func TestReservations_EditVuelveAPending(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)
	_, err := e.Reservations.Validate(r.ID)
	require.NoError(t, err)

	out, err := e.Reservations.Edit(r.ID, inventory.EditRequest{Quantity: ptr(int64(60))})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, out.Reservation.Status)
	assert.Equal(t, int64(60), out.Reservation.Quantity)
	assert.Equal(t, int64(60), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
}

func TestReservations_EditCambiaProducto(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	seedStock(t, e, "Calacatta", entity.LocationWarehouse, 20)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)

	out, err := e.Reservations.Edit(r.ID, inventory.EditRequest{Product: ptr("Calacatta"), Quantity: ptr(int64(15))})
	require.NoError(t, err)
	assert.Len(t, out.Lines, 2)
	assert.Equal(t, int64(0), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)
	assert.Equal(t, int64(15), line(t, e, "Calacatta", entity.LocationWarehouse).Reserved)
}

func TestReservations_EditContenedorExcluyeLaPropia(t *testing.T) {
	e := newTestEngine(t)
	createContainer(t, e, "C1", entity.ContainerLot{Product: "Black", Quantity: 100})
	r := reserve(t, e, "Q1", "Black", entity.SourceContainer, "C1", 80)

	_, err := e.Reservations.Edit(r.ID, inventory.EditRequest{Quantity: ptr(int64(100))})
	require.NoError(t, err)
	avail, err := e.Containers.AvailableInContainer("C1", "Black")
	require.NoError(t, err)
	assert.Equal(t, int64(0), avail)
}

func TestReservations_EditSinCambiosEsNoop(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	r := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 10)
	_, err := e.Reservations.Validate(r.ID)
	require.NoError(t, err)

	out, err := e.Reservations.Edit(r.ID, inventory.EditRequest{Quantity: ptr(int64(10))})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationValidated, out.Reservation.Status)
}

func TestReservations_ExpireOverdue(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	expires := baseTime.Add(time.Hour)
	out, err := e.Reservations.Create(inventory.CreateRequest{
		Customer: "Cliente", Product: "Carrara", Quantity: 10,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1", ExpiresAt: &expires,
	})
	require.NoError(t, err)
	keep := reserve(t, e, "Q2", "Carrara", entity.SourceWarehouse, "", 5)

	expired, err := e.Reservations.ExpireOverdue(baseTime.Add(2 * time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, out.Reservation.ID, expired[0].Reservation.ID)
	assert.Equal(t, entity.RejectionReasonExpired, expired[0].Reservation.RejectionReason)
	assert.Equal(t, int64(5), line(t, e, "Carrara", entity.LocationWarehouse).Reserved)

	got, err := e.Reservations.Get(keep.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, got.Status)
}

func TestReservations_ListFiltra(t *testing.T) {
	e := newTestEngine(t)
	seedStock(t, e, "Carrara", entity.LocationWarehouse, 60)
	seedStock(t, e, "Tan", entity.LocationFreeZone, 60)
	a := reserve(t, e, "Q1", "Carrara", entity.SourceWarehouse, "", 1)
	reserve(t, e, "Q2", "Tan", entity.SourceFreeZone, "", 1)
	_, err := e.Reservations.Validate(a.ID)
	require.NoError(t, err)

	assert.Len(t, e.Reservations.List(inventory.ReservationFilter{}), 2)
	list := e.Reservations.List(inventory.ReservationFilter{Status: entity.ReservationValidated})
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Len(t, e.Reservations.List(inventory.ReservationFilter{Source: entity.SourceFreeZone}), 1)
}
