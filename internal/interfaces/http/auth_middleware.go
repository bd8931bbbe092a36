package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/pkg/jwt"
)

// Locals keys para UserID y el contexto de tenant en Fiber.
const (
	LocalUserID = "user_id"
	LocalAccess = "access"
)

// AuthMiddleware valida el Bearer Token JWT y deja el UserID en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// contextResolver lo implementa *tenancy.Resolver.
type contextResolver interface {
	Resolve(ctx context.Context, userID string) (*access.Context, error)
}

// TenantMiddleware resuelve el contexto de tenant en cada petición. Debe ir DESPUÉS de AuthMiddleware.
//   - 401 si el usuario no existe, está inactivo o no tiene empresa.
//   - 403 si su empresa no está activa.
func TenantMiddleware(resolver contextResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, err := resolver.Resolve(c.UserContext(), GetUserID(c))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "sesión inválida o usuario inactivo"})
			}
			return writeError(c, err)
		}
		c.Locals(LocalAccess, ac)
		return c.Next()
	}
}

// RequireSuperuser restringe el grupo a superusers. Debe ir DESPUÉS de TenantMiddleware.
func RequireSuperuser(engine *access.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.RequireSuperuser(GetAccess(c)); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetAccess devuelve el contexto de tenant (después de TenantMiddleware).
func GetAccess(c *fiber.Ctx) *access.Context {
	ac, _ := c.Locals(LocalAccess).(*access.Context)
	return ac
}
