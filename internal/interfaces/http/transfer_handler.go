package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	appinv "github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
)

// TransferHandler traslados Zona Franca -> Bodega (protegido).
type TransferHandler struct {
	svc *appinv.Service
}

// NewTransferHandler construye el handler.
func NewTransferHandler(svc *appinv.Service) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// Create godoc
// @Summary      Trasladar de Zona Franca a Bodega
// @Description  Mueve total y la parte proporcional de separadas (redondeo half-up).
// @Description  Warning no vacío si las reservas reetiquetadas no suman esa parte.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product, quantity, selection, reservation_ids"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sel := inventory.Selection(in.Selection)
	if sel != "" && !sel.Valid() {
		return validation(c, "selection debe ser oldest_first, explicit o none")
	}
	res, err := h.svc.Transfer(c.UserContext(), actor(c), inventory.TransferRequest{
		Product:        in.Product,
		Quantity:       in.Quantity,
		Selection:      sel,
		ReservationIDs: in.ReservationIDs,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(appinv.TransferResponse(res))
}
