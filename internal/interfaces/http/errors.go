package http

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/domain"
	"github.com/jhoicas/reservas-api/internal/domain/entity"
)

var statusByCode = map[string]int{
	"NOT_FOUND":           fiber.StatusNotFound,
	"VALIDATION":          fiber.StatusBadRequest,
	"INSUFFICIENT_STOCK":  fiber.StatusConflict,
	"DUPLICATE_QUOTE":     fiber.StatusConflict,
	"DUPLICATE_CONTAINER": fiber.StatusConflict,
	"ALREADY_ARRIVED":     fiber.StatusConflict,
	"INVALID_TRANSITION":  fiber.StatusConflict,
	"INVALID_STATE":       fiber.StatusConflict,
	"UNAUTHORIZED":        fiber.StatusUnauthorized,
	"INVARIANT_VIOLATION": fiber.StatusInternalServerError,
	"INTERNAL":            fiber.StatusInternalServerError,
}

// fail responde el error de dominio con su código estable. Los 500 no exponen el detalle.
func fail(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrInvariantViolation):
		msg = "error interno de inventario"
	case status == fiber.StatusInternalServerError:
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}

// param valor de ruta decodificado ("M%C3%A1rmol" -> "Mármol").
func param(c *fiber.Ctx, key string) string {
	v := c.Params(key)
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}

// parseLocation acepta el nombre interno o el nombre de negocio de la ubicación.
func parseLocation(s string) (entity.LocationKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warehouse", "bodega":
		return entity.LocationWarehouse, true
	case "freezone", "zona_franca", "zona-franca", "zonafranca", "zf":
		return entity.LocationFreeZone, true
	}
	return "", false
}
