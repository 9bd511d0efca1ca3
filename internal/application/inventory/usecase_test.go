package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
	"github.com/jhoicas/reservas-api/internal/domain/repository/mocks"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

// fakeTxRunner ejecuta fn con los mocks, sin transacción real.
type fakeTxRunner struct {
	stock     *mocks.MockStockLineRepository
	container *mocks.MockContainerRepository
	res       *mocks.MockReservationRepository
	mov       *mocks.MockInventoryMovementRepository
	runs      int
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{
		stock:     new(mocks.MockStockLineRepository),
		container: new(mocks.MockContainerRepository),
		res:       new(mocks.MockReservationRepository),
		mov:       new(mocks.MockInventoryMovementRepository),
	}
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.StockLineRepository,
	repository.ContainerRepository,
	repository.ReservationRepository,
	repository.InventoryMovementRepository,
) error) error {
	f.runs++
	return fn(f.stock, f.container, f.res, f.mov)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...appinv.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

var vendedor = entity.Actor{UserID: "u-vendedor", Role: entity.RoleVendedor}

func newService(t *testing.T, tx appinv.TxRunner, pub appinv.EventPublisher) (*appinv.Service, *inventory.Engine) {
	t.Helper()
	engine := inventory.NewEngine()
	return appinv.NewService(engine, tx, pub, logger.NewNop(), ""), engine
}

func TestService_CreateReservationReplicaYPublica(t *testing.T) {
	tx := newFakeTxRunner()
	pub := new(mockPublisher)
	svc, engine := newService(t, tx, pub)
	_, err := engine.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 100)
	require.NoError(t, err)

	tx.stock.On("Upsert", mock.Anything, mock.MatchedBy(func(l entity.StockLine) bool {
		return l.Product == "Carrara" && l.Reserved == 30
	})).Return(nil).Once()
	tx.res.On("Upsert", mock.Anything, mock.MatchedBy(func(r *entity.Reservation) bool {
		return r.QuoteNumber == "Q1" && r.Advisor == vendedor.UserID
	})).Return(nil).Once()
	tx.mov.On("Create", mock.Anything, mock.MatchedBy(func(m *entity.InventoryMovement) bool {
		return m.Type == entity.MovementTypeRESERVE && m.ReservedDelta == 30 && m.Location == entity.LocationWarehouse
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(evs []appinv.Event) bool {
		return len(evs) == 1 && evs[0].Type == appinv.EventReservationCreated && evs[0].Key == "Carrara"
	})).Return(nil).Once()

	out, err := svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Carrara", Quantity: 30,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	})
	require.NoError(t, err)
	assert.Equal(t, vendedor.UserID, out.Reservation.Advisor)

	tx.stock.AssertExpectations(t)
	tx.res.AssertExpectations(t)
	tx.mov.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_ErrorDeNegocioNoReplica(t *testing.T) {
	tx := newFakeTxRunner()
	pub := new(mockPublisher)
	svc, _ := newService(t, tx, pub)

	_, err := svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Carrara", Quantity: 30,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, tx.runs)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), svc.Stats().InvariantViolations)
}

func TestService_FalloDelEspejoNoDeshace(t *testing.T) {
	tx := newFakeTxRunner()
	svc, engine := newService(t, tx, nil)

	tx.stock.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("conexión perdida"))

	line, err := svc.AdjustStock(context.Background(), vendedor, "Tan", entity.LocationFreeZone, 40, "inventario inicial")
	require.NoError(t, err)
	assert.Equal(t, int64(40), line.Total)

	avail, err := engine.Ledger.Available("Tan", entity.LocationFreeZone)
	require.NoError(t, err)
	assert.Equal(t, int64(40), avail)
	tx.mov.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_FalloDelEspejoSeCuenta(t *testing.T) {
	tx := newFakeTxRunner()
	svc, engine := newService(t, tx, nil)
	admin := entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
	_, err := engine.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 100)
	require.NoError(t, err)

	tx.stock.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tx.mov.On("Create", mock.Anything, mock.Anything).Return(nil)
	tx.res.On("Upsert", mock.Anything, mock.MatchedBy(func(r *entity.Reservation) bool {
		return r.Quantity == 30
	})).Return(nil)
	// la réplica de la segunda reserva de Q1 falla en BD
	tx.res.On("Upsert", mock.Anything, mock.MatchedBy(func(r *entity.Reservation) bool {
		return r.Quantity == 20
	})).Return(&pgconn.PgError{Code: "23505", ConstraintName: "reservations_active_quote"})

	req := inventory.CreateRequest{
		Customer: "Constructora", Product: "Carrara", Quantity: 30,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	}
	first, err := svc.CreateReservation(context.Background(), vendedor, req)
	require.NoError(t, err)
	_, err = svc.RejectReservation(context.Background(), admin, first.Reservation.ID, "cliente desiste")
	require.NoError(t, err)
	assert.Equal(t, int64(0), svc.Stats().MirrorFailures)

	req.Quantity = 20
	second, err := svc.CreateReservation(context.Background(), vendedor, req)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, second.Reservation.Status)
	assert.Equal(t, int64(1), svc.Stats().MirrorFailures)
	assert.Equal(t, int64(0), svc.Stats().InvariantViolations)
}

func TestService_AjusteCero(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	_, err := svc.AdjustStock(context.Background(), vendedor, "Tan", entity.LocationFreeZone, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ViolacionDeInvarianteSeCuenta(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	_, err := svc.AdjustStock(context.Background(), vendedor, "Tan", entity.LocationFreeZone, 10, "")
	require.NoError(t, err)
	_, err = svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Tan", Quantity: 10,
		Source: entity.SourceFreeZone, QuoteNumber: "Q1",
	})
	require.NoError(t, err)

	// retirar unidades separadas rompería la invariante
	_, err = svc.AdjustStock(context.Background(), vendedor, "Tan", entity.LocationFreeZone, -5, "")
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, int64(1), svc.Stats().InvariantViolations)
}

func TestService_TransferUsaPoliticaConfigurada(t *testing.T) {
	engine := inventory.NewEngine()
	svc := appinv.NewService(engine, nil, nil, logger.NewNop(), inventory.SelectionNone)
	_, err := engine.Ledger.AddTotal("Tan", entity.LocationFreeZone, 400)
	require.NoError(t, err)
	_, err = svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Tan", Quantity: 100,
		Source: entity.SourceFreeZone, QuoteNumber: "Q1",
	})
	require.NoError(t, err)

	res, err := svc.Transfer(context.Background(), vendedor, inventory.TransferRequest{Product: "Tan", Quantity: 200})
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.ReservedToMove)
	assert.Empty(t, res.Moved)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, 2, svc.Stats().Drift)
}

func TestService_TransferRegistraMovimientos(t *testing.T) {
	tx := newFakeTxRunner()
	svc, engine := newService(t, tx, nil)
	_, err := engine.Ledger.AddTotal("Tan", entity.LocationFreeZone, 400)
	require.NoError(t, err)

	tx.stock.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()
	tx.mov.On("Create", mock.Anything, mock.MatchedBy(func(m *entity.InventoryMovement) bool {
		return m.Type == entity.MovementTypeTRANSFEROUT && m.Quantity == -100
	})).Return(nil).Once()
	tx.mov.On("Create", mock.Anything, mock.MatchedBy(func(m *entity.InventoryMovement) bool {
		return m.Type == entity.MovementTypeTRANSFERIN && m.Quantity == 100
	})).Return(nil).Once()

	_, err = svc.Transfer(context.Background(), vendedor, inventory.TransferRequest{Product: "Tan", Quantity: 100})
	require.NoError(t, err)
	tx.stock.AssertExpectations(t)
	tx.mov.AssertExpectations(t)
}

func TestService_Bootstrap(t *testing.T) {
	tx := newFakeTxRunner()
	svc, engine := newService(t, tx, nil)
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tx.stock.On("List", mock.Anything).Return([]entity.StockLine{
		{Product: "Carrara", Location: entity.LocationWarehouse, Total: 100, Reserved: 30, Version: 3},
	}, nil)
	tx.container.On("List", mock.Anything).Return([]*entity.Container{
		{ID: "C1", Status: entity.ContainerInTransit, Lots: []entity.ContainerLot{{Product: "Black", Quantity: 200}}, Version: 1},
	}, nil)
	tx.res.On("ListLive", mock.Anything).Return([]*entity.Reservation{
		{ID: "R1", Product: "Carrara", Quantity: 30, Source: entity.SourceWarehouse, SourceID: "Warehouse",
			QuoteNumber: "Q1", Status: entity.ReservationValidated, CreatedAt: created, Version: 2},
		{ID: "R2", Product: "Black", Quantity: 50, Source: entity.SourceContainer, SourceID: "C1",
			QuoteNumber: "Q2", Status: entity.ReservationPending, CreatedAt: created, Version: 1},
	}, nil)

	require.NoError(t, svc.Bootstrap(context.Background()))

	avail, err := engine.Ledger.Available("Carrara", entity.LocationWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(70), avail)
	inC1, err := engine.Containers.AvailableInContainer("C1", "Black")
	require.NoError(t, err)
	assert.Equal(t, int64(150), inC1)

	_, err = engine.Reservations.Create(inventory.CreateRequest{
		Customer: "X", Product: "Carrara", Quantity: 1, Source: entity.SourceWarehouse, QuoteNumber: "Q1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateQuote)
}

func TestService_BootstrapRechazaEstadoInconsistente(t *testing.T) {
	tx := newFakeTxRunner()
	svc, _ := newService(t, tx, nil)

	tx.stock.On("List", mock.Anything).Return([]entity.StockLine{
		{Product: "Carrara", Location: entity.LocationWarehouse, Total: 10, Reserved: 30},
	}, nil)
	tx.container.On("List", mock.Anything).Return(nil, nil)
	tx.res.On("ListLive", mock.Anything).Return(nil, nil)

	err := svc.Bootstrap(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, int64(1), svc.Stats().InvariantViolations)
}

func TestService_MarkArrivedRegistraLlegada(t *testing.T) {
	tx := newFakeTxRunner()
	svc, _ := newService(t, tx, nil)

	tx.container.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tx.res.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tx.stock.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tx.mov.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateContainer(context.Background(), vendedor, "C1", time.Now(), []entity.ContainerLot{{Product: "Black", Quantity: 200}})
	require.NoError(t, err)
	_, err = svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Black", Quantity: 50,
		Source: entity.SourceContainer, SourceID: "C1", QuoteNumber: "Q1",
	})
	require.NoError(t, err)

	out, err := svc.MarkArrived(context.Background(), vendedor, "C1", time.Time{})
	require.NoError(t, err)
	require.Len(t, out.Relabeled, 1)
	tx.mov.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(m *entity.InventoryMovement) bool {
		return m.Type == entity.MovementTypeARRIVAL && m.Quantity == 200 && m.ReservedDelta == 50
	}))
}

func TestService_ExpireOverdue(t *testing.T) {
	svc, engine := newService(t, nil, nil)
	_, err := engine.Ledger.AddTotal("Carrara", entity.LocationWarehouse, 100)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	_, err = svc.CreateReservation(context.Background(), vendedor, inventory.CreateRequest{
		Customer: "Constructora", Product: "Carrara", Quantity: 30,
		Source: entity.SourceWarehouse, QuoteNumber: "Q1", ExpiresAt: &past,
	})
	require.NoError(t, err)

	outs, err := svc.ExpireOverdue(context.Background(), vendedor, time.Time{})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, entity.ReservationRejected, outs[0].Reservation.Status)
}

func TestService_MovementsSinBD(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	_, err := svc.Movements(context.Background(), "Tan", nil, nil, 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
