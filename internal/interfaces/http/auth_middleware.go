package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/permission"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// Locals keys para UserID, CompanyID, Role y los permisos en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
	LocalGrants    = "grants"
)

// RoleAdmin tiene todos los permisos aunque el token no los liste.
const RoleAdmin = "admin"

// AuthMiddleware valida el Bearer Token JWT y extrae identidad y permisos a c.Locals.
// Los permisos se parsean una vez por request; las entradas desconocidas no otorgan nada.
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
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if claims.CompanyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_COMPANY", Message: "el token no incluye company_id"})
		}

		grants, _ := permission.ParseGrants(claims.Permissions)
		if claims.Role == RoleAdmin {
			grants = permission.NewGrants(permission.Grant{AnyModule: true, AnyAction: true})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalCompanyID, claims.CompanyID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalGrants, grants)
		return c.Next()
	}
}

// RequirePermission responde 403 si los grants del token no cubren p.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(p permission.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grants, ok := c.Locals(LocalGrants).(permission.Grants)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión no autenticada"})
		}
		if !grants.Allows(p) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + p.String(),
			})
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCompanyID).(string)
	return s
}

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
