package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/records"
)

// DashboardHandler maneja el resumen del dashboard.
type DashboardHandler struct {
	svc *records.Service
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(svc *records.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetSummary devuelve cuántos registros ve el usuario en cada colección que puede consultar.
// GET /api/dashboard
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.svc.Summary(c.UserContext(), GetAccess(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
