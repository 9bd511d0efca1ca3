package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/application/inventory"
)

// ContainerHandler contenedores en tránsito (protegido).
type ContainerHandler struct {
	svc *inventory.Service
}

// NewContainerHandler construye el handler.
func NewContainerHandler(svc *inventory.Service) *ContainerHandler {
	return &ContainerHandler{svc: svc}
}

// Create godoc
// @Summary      Registrar contenedor
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContainerRequest  true  "id, eta, lots"
// @Success      201   {object}  dto.ContainerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers [post]
func (h *ContainerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContainerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ID == "" || len(in.Lots) == 0 {
		return validation(c, "id y al menos un lote son requeridos")
	}
	out, err := h.svc.CreateContainer(c.UserContext(), actor(c), in.ID, in.ETA, in.Entity())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromContainer(out))
}

// List godoc
// @Summary      Listar contenedores
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ContainerResponse
// @Router       /api/containers [get]
func (h *ContainerHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.FromContainers(h.svc.Containers()))
}

// GetByID godoc
// @Summary      Obtener contenedor
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contenedor"
// @Success      200  {object}  dto.ContainerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/containers/{id} [get]
func (h *ContainerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Container(param(c, "id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromContainer(out))
}

// Available godoc
// @Summary      Disponible de un producto en un contenedor
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        id       path   string  true  "ID del contenedor"
// @Param        product  query  string  true  "Producto"
// @Success      200  {object}  dto.ContainerAvailableResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/available [get]
func (h *ContainerHandler) Available(c *fiber.Ctx) error {
	id, product := param(c, "id"), c.Query("product")
	if product == "" {
		return validation(c, "product es requerido")
	}
	qty, err := h.svc.AvailableInContainer(id, product)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ContainerAvailableResponse{ContainerID: id, Product: product, Available: qty})
}

// Delay godoc
// @Summary      Marcar contenedor demorado
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del contenedor"
// @Param        body  body  dto.DelayContainerRequest  false  "nueva eta"
// @Success      200   {object}  dto.ContainerResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/delay [post]
func (h *ContainerHandler) Delay(c *fiber.Ctx) error {
	var in dto.DelayContainerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	var eta time.Time
	if in.ETA != nil {
		eta = *in.ETA
	}
	out, err := h.svc.MarkDelayed(c.UserContext(), actor(c), param(c, "id"), eta)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromContainer(out))
}

// Resume godoc
// @Summary      Devolver contenedor a tránsito
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contenedor"
// @Success      200  {object}  dto.ContainerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/resume [post]
func (h *ContainerHandler) Resume(c *fiber.Ctx) error {
	out, err := h.svc.ResumeTransit(c.UserContext(), actor(c), param(c, "id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromContainer(out))
}

// Arrive godoc
// @Summary      Registrar llegada a Zona Franca
// @Description  Suma los lotes al total de Zona Franca y reetiqueta las reservas del contenedor.
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "ID del contenedor"
// @Param        body  body  dto.ArriveContainerRequest  false  "arrived_at"
// @Success      200   {object}  dto.ArrivalResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/arrive [post]
func (h *ContainerHandler) Arrive(c *fiber.Ctx) error {
	var in dto.ArriveContainerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	var at time.Time
	if in.ArrivedAt != nil {
		at = *in.ArrivedAt
	}
	out, err := h.svc.MarkArrived(c.UserContext(), actor(c), param(c, "id"), at)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ArrivalResponse{
		Container: dto.FromContainer(out.Container),
		Lines:     dto.FromStockLines(out.Lines),
		Relabeled: dto.FromReservations(out.Relabeled),
	})
}
