package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/auth"
	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
)

// AuthHandler maneja alta de empresas y login.
type AuthHandler struct {
	uc        *auth.AuthUseCase
	companyUC *usecase.CompanyUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, companyUC *usecase.CompanyUseCase) *AuthHandler {
	return &AuthHandler{uc: uc, companyUC: companyUC}
}

// Signup godoc
// @Summary      Registrar empresa y su administrador
// @Description  La empresa queda pending y el administrador inactivo hasta que un superuser la apruebe.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "company_name, username, email, password"
// @Success      201   {object}  dto.SignupResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.companyUC.Signup(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "login (username o email), password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
