package handler

import "github.com/gofiber/fiber/v2"

// Error answers a structured JSON error body with the given status.
// Messages are deliberately generic on authentication paths so callers cannot
// distinguish which internal stage failed.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
