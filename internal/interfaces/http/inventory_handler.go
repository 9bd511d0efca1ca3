package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/application/usecase"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

// InventoryHandler consultas y ajustes del libro de stock (protegido).
type InventoryHandler struct {
	svc     *inventory.Service
	catalog *usecase.ProductUseCase
}

// NewInventoryHandler construye el handler. catalog puede ser nil (sin marca/línea).
func NewInventoryHandler(svc *inventory.Service, catalog *usecase.ProductUseCase) *InventoryHandler {
	return &InventoryHandler{svc: svc, catalog: catalog}
}

func (h *InventoryHandler) decorate(c *fiber.Ctx, lines []dto.StockLineResponse) []dto.StockLineResponse {
	if h.catalog == nil {
		return lines
	}
	return h.catalog.Decorate(c.UserContext(), lines)
}

// Lines godoc
// @Summary      Listar líneas de stock
// @Description  Total, separadas y disponible por producto y ubicación.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product   query  string  false  "Filtrar por producto"
// @Success      200  {array}   dto.StockLineResponse
// @Router       /api/stock [get]
func (h *InventoryHandler) Lines(c *fiber.Ctx) error {
	lines := dto.FromStockLines(h.svc.Lines())
	if product := entity.NormalizeProduct(c.Query("product")); product != "" {
		filtered := lines[:0]
		for _, l := range lines {
			if l.Product == product {
				filtered = append(filtered, l)
			}
		}
		lines = filtered
	}
	return c.JSON(h.decorate(c, lines))
}

// Available godoc
// @Summary      Disponible de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Warehouse | FreeZone"
// @Param        product   path  string  true  "Producto"
// @Success      200  {object}  dto.StockLineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{location}/{product} [get]
func (h *InventoryHandler) Available(c *fiber.Ctx) error {
	loc, ok := parseLocation(c.Params("location"))
	if !ok {
		return validation(c, "ubicación desconocida")
	}
	line, err := h.svc.Line(param(c, "product"), loc)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(h.decorate(c, []dto.StockLineResponse{dto.FromStockLine(line)})[0])
}

// Adjust godoc
// @Summary      Ajustar el total de una línea
// @Description  delta > 0 suma unidades físicas; delta < 0 las retira sin tocar separadas.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustmentRequest  true  "product, location, delta, reason"
// @Success      200   {object}  dto.StockLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.StockAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	loc, ok := parseLocation(in.Location)
	if !ok {
		return validation(c, "ubicación desconocida")
	}
	if in.Product == "" || in.Delta == 0 {
		return validation(c, "product y delta distinto de cero son requeridos")
	}
	line, err := h.svc.AdjustStock(c.UserContext(), actor(c), in.Product, loc, in.Delta, in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromStockLine(line))
}

// Movements godoc
// @Summary      Diario de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product  query  string  true   "Producto"
// @Param        from     query  string  false  "Desde (RFC3339)"
// @Param        to       query  string  false  "Hasta (RFC3339)"
// @Param        limit    query  int     false  "Límite (default 20)"
// @Param        offset   query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	product := c.Query("product")
	if product == "" {
		return validation(c, "product es requerido")
	}
	from, err := parseTime(c.Query("from"))
	if err != nil {
		return validation(c, "from debe ser RFC3339")
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return validation(c, "to debe ser RFC3339")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	list, err := h.svc.Movements(c.UserContext(), product, from, to, page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.FromMovements(list))
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
