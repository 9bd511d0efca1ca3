package repository

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// UserRepository lectura de usuarios para login y perfil.
type UserRepository interface {
	// FindByEmail devuelve nil, nil si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID devuelve nil, nil si no existe.
	FindByID(ctx context.Context, id string) (*entity.User, error)
}
