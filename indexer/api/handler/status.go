package handler

import (
	"github.com/gofiber/fiber/v2"
)

// GetStatus handles GET /status
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.engine.Status())
}
