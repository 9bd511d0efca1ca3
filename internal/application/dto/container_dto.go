package dto

import (
	"time"

	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// ContainerLotDTO lote de un producto en un contenedor.
type ContainerLotDTO struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

// CreateContainerRequest body para POST /api/containers.
type CreateContainerRequest struct {
	ID   string            `json:"id"`
	ETA  time.Time         `json:"eta"`
	Lots []ContainerLotDTO `json:"lots"`
}

// Entity convierte los lotes al tipo de dominio.
func (r CreateContainerRequest) Entity() []entity.ContainerLot {
	lots := make([]entity.ContainerLot, 0, len(r.Lots))
	for _, l := range r.Lots {
		lots = append(lots, entity.ContainerLot{Product: l.Product, Quantity: l.Quantity})
	}
	return lots
}

// DelayContainerRequest body para POST /api/containers/:id/delay. ETA opcional.
type DelayContainerRequest struct {
	ETA *time.Time `json:"eta,omitempty"`
}

// ArriveContainerRequest body opcional para POST /api/containers/:id/arrive.
type ArriveContainerRequest struct {
	ArrivedAt *time.Time `json:"arrived_at,omitempty"`
}

// ContainerResponse contenedor con sus lotes.
type ContainerResponse struct {
	ID        string            `json:"id"`
	ETA       time.Time         `json:"eta"`
	Status    string            `json:"status"`
	Lots      []ContainerLotDTO `json:"lots"`
	CreatedAt time.Time         `json:"created_at"`
	ArrivedAt *time.Time        `json:"arrived_at,omitempty"`
}

// FromContainer convierte un contenedor.
func FromContainer(c *entity.Container) ContainerResponse {
	lots := make([]ContainerLotDTO, 0, len(c.Lots))
	for _, l := range c.Lots {
		lots = append(lots, ContainerLotDTO{Product: l.Product, Quantity: l.Quantity})
	}
	return ContainerResponse{
		ID:        c.ID,
		ETA:       c.ETA,
		Status:    string(c.Status),
		Lots:      lots,
		CreatedAt: c.CreatedAt,
		ArrivedAt: c.ArrivedAt,
	}
}

// FromContainers convierte varios contenedores.
func FromContainers(list []*entity.Container) []ContainerResponse {
	out := make([]ContainerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromContainer(c))
	}
	return out
}

// ContainerAvailableResponse disponible de un producto en un contenedor en tránsito.
type ContainerAvailableResponse struct {
	ContainerID string `json:"container_id"`
	Product     string `json:"product"`
	Available   int64  `json:"available"`
}

// ArrivalResponse resultado de la llegada de un contenedor.
type ArrivalResponse struct {
	Container ContainerResponse     `json:"container"`
	Lines     []StockLineResponse   `json:"lines"`
	Relabeled []ReservationResponse `json:"relabeled"`
}
