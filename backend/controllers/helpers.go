package controllers

import (
	"coursetrack/backend/apperr"
	"coursetrack/backend/middleware"

	"github.com/gofiber/fiber/v2"
)

// currentUser is the id AuthMiddleware resolved from the bearer token.
func currentUser(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(middleware.UserIDKey).(uint)
	if !ok || id == 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput(map[string]string{name: "must be a positive integer"})
	}
	return uint(id), nil
}
