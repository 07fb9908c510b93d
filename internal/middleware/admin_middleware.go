package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openbid/auctionhouse/internal/models"
)

// RequireAdmin ensures the actor has the admin role. It must run after
// RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied. Admin only"})
	}
	return c.Next()
}
