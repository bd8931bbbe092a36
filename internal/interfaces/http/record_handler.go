package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/records"
	"github.com/jhoicas/Reckonix-api/internal/domain"
)

// RecordHandler CRUD genérico sobre las colecciones de negocio.
type RecordHandler struct {
	svc *records.Service
}

// NewRecordHandler construye el handler.
func NewRecordHandler(svc *records.Service) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// List godoc
// @Summary      Listar documentos visibles
// @Description  Cualquier query param distinto de limit/offset es un filtro de igualdad.
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        collection  path   string  true   "Colección"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.RecordListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{collection} [get]
func (h *RecordHandler) List(c *fiber.Ctx) error {
	params := dto.RecordListParams{Filters: map[string]string{}}
	if err := c.QueryParser(&params.PageRequest); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	for k, v := range c.Queries() {
		if k == "limit" || k == "offset" {
			continue
		}
		params.Filters[k] = v
	}
	out, err := h.svc.List(c.UserContext(), GetAccess(c), param(c, "collection"), params)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener documento
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{collection}/{id} [get]
func (h *RecordHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), GetAccess(c), param(c, "collection"), param(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear documento
// @Description  companyId lo fija el servidor; solo un superuser puede indicarlo.
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        collection  path  string  true  "Colección"
// @Success      201  {object}  dto.RecordResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/records/{collection} [post]
func (h *RecordHandler) Create(c *fiber.Ctx) error {
	body := map[string]any{}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Create(c.UserContext(), GetAccess(c), param(c, "collection"), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Reemplazar documento
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID"
// @Success      200  {object}  dto.RecordResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{collection}/{id} [put]
func (h *RecordHandler) Update(c *fiber.Ctx) error {
	body := map[string]any{}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Update(c.UserContext(), GetAccess(c), param(c, "collection"), param(c, "id"), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar documento
// @Tags         records
// @Security     BearerAuth
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{collection}/{id} [delete]
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), GetAccess(c), param(c, "collection"), param(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// param copia el valor: Fiber reutiliza el buffer de la petición y el store puede retenerlo.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}
