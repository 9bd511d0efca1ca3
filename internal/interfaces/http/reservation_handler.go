package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	appinv "github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

// ReservationHandler reservas y su flujo de validación (protegido).
type ReservationHandler struct {
	svc      *appinv.Service
	workflow *appinv.ValidationWorkflow
}

// NewReservationHandler construye el handler.
func NewReservationHandler(svc *appinv.Service, workflow *appinv.ValidationWorkflow) *ReservationHandler {
	return &ReservationHandler{svc: svc, workflow: workflow}
}

func outcome(out *inventory.Outcome) dto.ReservationOutcomeResponse {
	return dto.ReservationOutcomeResponse{
		Reservation: dto.FromReservation(out.Reservation),
		Lines:       dto.FromStockLines(out.Lines),
	}
}

// Create godoc
// @Summary      Crear reserva
// @Description  Separa stock de un contenedor, Bodega o Zona Franca contra una cotización.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "customer, product, quantity, source, source_id, quote_number"
// @Success      201   {object}  dto.ReservationOutcomeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.CreateReservation(c.UserContext(), actor(c), inventory.CreateRequest{
		Customer:    in.Customer,
		Product:     in.Product,
		Quantity:    in.Quantity,
		Source:      entity.Source(in.Source),
		SourceID:    in.SourceID,
		QuoteNumber: in.QuoteNumber,
		Advisor:     in.Advisor,
		ExpiresAt:   in.ExpiresAt,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(outcome(out))
}

// List godoc
// @Summary      Listar reservas
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "Pending | Validated | Rejected | Dispatched"
// @Param        product    query  string  false  "Producto"
// @Param        advisor    query  string  false  "Asesor"
// @Param        source     query  string  false  "Container | Warehouse | FreeZone"
// @Param        source_id  query  string  false  "ID del contenedor"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	list := h.svc.ListReservations(inventory.ReservationFilter{
		Status:   entity.ReservationStatus(c.Query("status")),
		Product:  c.Query("product"),
		Advisor:  c.Query("advisor"),
		Source:   entity.Source(c.Query("source")),
		SourceID: c.Query("source_id"),
	})
	return c.JSON(dto.FromReservations(list))
}

// GetByID godoc
// @Summary      Obtener reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.svc.GetReservation(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromReservation(r))
}

// History godoc
// @Summary      Movimientos del diario de una reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/history [get]
func (h *ReservationHandler) History(c *fiber.Ctx) error {
	list, err := h.svc.ReservationHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromMovements(list))
}

// Update godoc
// @Summary      Editar reserva
// @Description  Cambia producto, cantidad o vencimiento; la reserva vuelve a Pending.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la reserva"
// @Param        body  body  dto.EditReservationRequest  true  "product, quantity, expires_at"
// @Success      200   {object}  dto.ReservationOutcomeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [put]
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	var in dto.EditReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.workflow.RequestChanges(c.UserContext(), actor(c), c.Params("id"), inventory.EditRequest{
		Product:         in.Product,
		Quantity:        in.Quantity,
		ExpiresAt:       in.ExpiresAt,
		ClearExpiration: in.ClearExpiration,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outcome(out))
}

// Delete godoc
// @Summary      Eliminar reserva
// @Description  Libera la cantidad si la reserva estaba activa.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationOutcomeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *fiber.Ctx) error {
	out, err := h.svc.DeleteReservation(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outcome(out))
}

// Approve godoc
// @Summary      Aprobar reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationOutcomeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c *fiber.Ctx) error {
	out, err := h.workflow.Approve(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outcome(out))
}

// Reject godoc
// @Summary      Rechazar reserva
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID de la reserva"
// @Param        body  body  dto.RejectReservationRequest  false  "reason"
// @Success      200   {object}  dto.ReservationOutcomeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/reject [post]
func (h *ReservationHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectReservationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.workflow.Reject(c.UserContext(), actor(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outcome(out))
}

// Dispatch godoc
// @Summary      Despachar reserva
// @Description  Validated -> Dispatched; total y separadas bajan juntos.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationOutcomeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/dispatch [post]
func (h *ReservationHandler) Dispatch(c *fiber.Ctx) error {
	out, err := h.svc.DispatchReservation(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outcome(out))
}

// Expire godoc
// @Summary      Vencer reservas
// @Description  Rechaza con motivo "vencida" las reservas activas con expires_at anterior a now.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpireReservationsRequest  false  "now"
// @Success      200   {array}   dto.ReservationResponse
// @Router       /api/reservations/expire [post]
func (h *ReservationHandler) Expire(c *fiber.Ctx) error {
	var in dto.ExpireReservationsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	var now time.Time
	if in.Now != nil {
		now = *in.Now
	}
	outs, err := h.svc.ExpireOverdue(c.UserContext(), actor(c), now)
	if err != nil {
		return fail(c, err)
	}
	expired := make([]dto.ReservationResponse, 0, len(outs))
	for _, out := range outs {
		expired = append(expired, dto.FromReservation(out.Reservation))
	}
	return c.JSON(expired)
}
