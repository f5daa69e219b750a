package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
)

// RequirePermission devuelve un middleware Fiber que exige el permiso indicado
// en los claims del token. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 → no hay claims en el contexto (el AuthMiddleware debería haberlos puesto).
//   - 403 → el usuario no tiene el permiso.
func RequirePermission(permiso string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "claims no encontrados en el token",
			})
		}
		if !claims.TienePermiso(permiso) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "falta el permiso '" + permiso + "'",
			})
		}
		return c.Next()
	}
}
