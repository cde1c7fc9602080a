package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck is the liveness probe.
func HealthCheck(c *fiber.Ctx) error {
	return c.SendString("Ok")
}
