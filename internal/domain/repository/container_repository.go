package repository

import (
	"context"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ContainerRepository espejo de contenedores y sus lotes.
type ContainerRepository interface {
	Upsert(ctx context.Context, c *entity.Container) error
	List(ctx context.Context) ([]*entity.Container, error)
}
