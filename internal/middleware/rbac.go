package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// RequireRole admits requests whose user_role local parses to one of roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		value, _ := c.Locals("user_role").(string)
		role, ok := models.ParseRole(value)
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		if _, permitted := allowed[role]; !permitted {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireStaff admits faculty and administrators.
func RequireStaff() fiber.Handler {
	return RequireRole(models.RoleFaculty, models.RoleAdmin)
}
