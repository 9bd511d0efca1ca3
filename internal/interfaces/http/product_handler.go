package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/application/usecase"
)

// ProductHandler catálogo descriptivo de productos (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// GetByName godoc
// @Summary      Obtener producto del catálogo
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{name} [get]
func (h *ProductHandler) GetByName(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), param(c, "name"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar catálogo
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// Upsert godoc
// @Summary      Crear o actualizar producto del catálogo
// @Description  Marca y línea son descriptivas; no cambian la clave del stock.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        name  path  string              true  "Nombre del producto"
// @Param        body  body  dto.ProductRequest  true  "brand, line"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/{name} [put]
func (h *ProductHandler) Upsert(c *fiber.Ctx) error {
	var in dto.ProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Upsert(c.UserContext(), param(c, "name"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
