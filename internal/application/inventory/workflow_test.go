package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

var admin = entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}

func newWorkflow(t *testing.T) (*appinv.ValidationWorkflow, *appinv.Service, *inventory.Engine) {
	t.Helper()
	svc, engine := newService(t, nil, nil)
	_, err := engine.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 100)
	require.NoError(t, err)
	return appinv.NewValidationWorkflow(svc), svc, engine
}

func createPending(t *testing.T, svc *appinv.Service, quote string, qty int64) *entity.Reservation {
	t.Helper()
	out, err := svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Carrara", Quantity: qty,
		Source: entity.SourceWarehouse, QuoteNumber: quote,
	})
	require.NoError(t, err)
	return out.Reservation
}

func TestWorkflow_Approve(t *testing.T) {
	wf, svc, _ := newWorkflow(t)
	r := createPending(t, svc, "Q1", 10)

	out, err := wf.Approve(context.Background(), admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationValidated, out.Reservation.Status)

	// aprobar dos veces no es una transición legal
	_, err = wf.Approve(context.Background(), admin, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWorkflow_RejectLibera(t *testing.T) {
	wf, svc, engine := newWorkflow(t)
	r := createPending(t, svc, "Q1", 10)

	_, err := wf.Reject(context.Background(), admin, r.ID, "sin crédito")
	require.NoError(t, err)
	avail, err := engine.Ledger.Available("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(100), avail)
}

func TestWorkflow_TerminalEsInvalidState(t *testing.T) {
	wf, svc, _ := newWorkflow(t)
	r := createPending(t, svc, "Q1", 10)
	_, err := wf.Reject(context.Background(), admin, r.ID, "")
	require.NoError(t, err)

	_, err = wf.Approve(context.Background(), admin, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = wf.Reject(context.Background(), admin, r.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	qty := int64(5)
	_, err = wf.RequestChanges(context.Background(), admin, r.ID, inventory.EditRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestWorkflow_RequestChangesVuelveAPending(t *testing.T) {
	wf, svc, engine := newWorkflow(t)
	r := createPending(t, svc, "Q1", 10)
	_, err := wf.Approve(context.Background(), admin, r.ID)
	require.NoError(t, err)

	qty := int64(25)
	out, err := wf.RequestChanges(context.Background(), admin, r.ID, inventory.EditRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, out.Reservation.Status)
	line, err := engine.Ledger.Line("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(25), line.Reserved)
}

func TestWorkflow_NoExiste(t *testing.T) {
	wf, _, _ := newWorkflow(t)
	_, err := wf.Approve(context.Background(), admin, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
