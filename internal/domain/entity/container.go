package entity

import "time"

// ContainerStatus estado logístico de un contenedor.
type ContainerStatus string

const (
	ContainerInTransit ContainerStatus = "InTransit"
	ContainerDelayed   ContainerStatus = "Delayed"
	ContainerArrived   ContainerStatus = "Arrived"
)

// ContainerLot cantidad de un producto dentro de un contenedor.
type ContainerLot struct {
	Product  string
	Quantity int64
}

// Container lote en tránsito. Al llegar, su contenido se suma a Zona Franca.
// Las transiciones válidas son InTransit <-> Delayed -> Arrived; Arrived es terminal.
type Container struct {
	ID        string
	ETA       time.Time
	Lots      []ContainerLot
	Status    ContainerStatus
	CreatedAt time.Time
	ArrivedAt *time.Time
	Version   int64
}

// LotQuantity cantidad del producto en el contenedor (0 si no viene en él).
func (c *Container) LotQuantity(product string) int64 {
	for _, l := range c.Lots {
		if l.Product == product {
			return l.Quantity
		}
	}
	return 0
}

// HasProduct indica si el contenedor trae el producto.
func (c *Container) HasProduct(product string) bool {
	for _, l := range c.Lots {
		if l.Product == product {
			return true
		}
	}
	return false
}

// Clone copia profunda (los lotes se copian).
func (c *Container) Clone() *Container {
	cp := *c
	cp.Lots = append([]ContainerLot(nil), c.Lots...)
	if c.ArrivedAt != nil {
		at := *c.ArrivedAt
		cp.ArrivedAt = &at
	}
	return &cp
}

