package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
)

var (
	_ repository.StockLineRepository         = (*MockStockLineRepository)(nil)
	_ repository.ContainerRepository         = (*MockContainerRepository)(nil)
	_ repository.ReservationRepository       = (*MockReservationRepository)(nil)
	_ repository.InventoryMovementRepository = (*MockInventoryMovementRepository)(nil)
	_ repository.ProductRepository           = (*MockProductRepository)(nil)
	_ repository.UserRepository              = (*MockUserRepository)(nil)
)

type MockStockLineRepository struct {
	mock.Mock
}

func (m *MockStockLineRepository) Upsert(ctx context.Context, line entity.StockLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockStockLineRepository) List(ctx context.Context) ([]entity.StockLine, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]entity.StockLine), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockContainerRepository struct {
	mock.Mock
}

func (m *MockContainerRepository) Upsert(ctx context.Context, c *entity.Container) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContainerRepository) List(ctx context.Context) ([]*entity.Container, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*entity.Container), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Upsert(ctx context.Context, r *entity.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) ListLive(ctx context.Context) ([]*entity.Reservation, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*entity.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInventoryMovementRepository struct {
	mock.Mock
}

func (m *MockInventoryMovementRepository) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockInventoryMovementRepository) ListByProduct(ctx context.Context, product string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	args := m.Called(ctx, product, from, to, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*entity.InventoryMovement), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryMovementRepository) ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error) {
	args := m.Called(ctx, reference)
	if v := args.Get(0); v != nil {
		return v.([]*entity.InventoryMovement), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Upsert(ctx context.Context, p entity.ProductInfo) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Get(ctx context.Context, name string) (*entity.ProductInfo, error) {
	args := m.Called(ctx, name)
	if v := args.Get(0); v != nil {
		return v.(*entity.ProductInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]entity.ProductInfo, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]entity.ProductInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}
