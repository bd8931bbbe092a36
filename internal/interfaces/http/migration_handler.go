package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/migration"
	"github.com/jhoicas/Reckonix-api/internal/domain"
)

// MigrationHandler backfill y verificación de datos (superuser).
type MigrationHandler struct {
	svc *migration.Service
}

// NewMigrationHandler construye el handler.
func NewMigrationHandler(svc *migration.Service) *MigrationHandler {
	return &MigrationHandler{svc: svc}
}

// Backfill godoc
// @Summary      Asignar empresa a registros legados
// @Description  Responde 207 con el reporte si alguna colección falló.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.BackfillRequest  true  "company_id, collections, dry_run"
// @Success      200  {object}  dto.BackfillReport
// @Success      207  {object}  dto.BackfillReport
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/backfill [post]
func (h *MigrationHandler) Backfill(c *fiber.Ctx) error {
	var in dto.BackfillRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	report, err := h.svc.Backfill(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrMigrationPartialFailure) && report != nil {
			return c.Status(fiber.StatusMultiStatus).JSON(report)
		}
		return writeError(c, err)
	}
	return c.JSON(report)
}

// Verify godoc
// @Summary      Verificar reparto de registros de una empresa
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query  int  true  "ID de la empresa"
// @Success      200  {object}  dto.VerifyReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/verify [get]
func (h *MigrationHandler) Verify(c *fiber.Ctx) error {
	companyID := c.QueryInt("company_id", 0)
	if companyID <= 0 {
		return writeError(c, domain.ErrInvalidInput)
	}
	out, err := h.svc.Verify(c.UserContext(), int64(companyID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
