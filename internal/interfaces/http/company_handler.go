package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain"
)

// CompanyHandler administración de empresas (superuser).
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// List godoc
// @Summary      Listar empresas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.CompanyListResponse
// @Router       /api/admin/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.List(c.UserContext(), GetAccess(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar empresa
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/companies/{id}/approve [post]
func (h *CompanyHandler) Approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return writeError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.Approve(c.UserContext(), GetAccess(c), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Suspend godoc
// @Summary      Suspender empresa
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/companies/{id}/suspend [post]
func (h *CompanyHandler) Suspend(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return writeError(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.Suspend(c.UserContext(), GetAccess(c), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
