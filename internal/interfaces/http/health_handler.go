package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/reservas-api/internal/application/dto"
	"github.com/jhoicas/reservas-api/internal/application/inventory"
)

// HealthHandler estado del servicio; lo consulta el check de Consul.
type HealthHandler struct {
	svc     *inventory.Service
	service string
}

// NewHealthHandler construye el handler.
func NewHealthHandler(svc *inventory.Service, service string) *HealthHandler {
	return &HealthHandler{svc: svc, service: service}
}

// Health godoc
// @Summary      Estado del servicio
// @Description  invariant_violations cuenta violaciones detectadas desde el arranque; mirror_failures
// @Description  las operaciones que no se pudieron replicar en BD; drift las líneas cuyas separadas
// @Description  difieren de sus reservas tras un traslado.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	stats := h.svc.Stats()
	return c.JSON(dto.HealthResponse{
		Status:              "ok",
		Service:             h.service,
		InvariantViolations: stats.InvariantViolations,
		MirrorFailures:      stats.MirrorFailures,
		Drift:               stats.Drift,
	})
}
