package middleware

import (
	"coursetrack/backend/config"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the fiber.Locals key holding the authenticated user id.
const UserIDKey = "userID"

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(users repository.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(UserIDKey).(uint)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}

		user, err := users.GetByID(c.UserContext(), nil, userID)
		if err != nil {
			return utils.InternalServerError(c, "could not load user")
		}
		if user == nil || user.Role != "admin" {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		return c.Next()
	}
}
