package handlers

import (
	"github.com/gofiber/fiber/v3"

	"qrshort/internal/config"
	"qrshort/internal/models"
)

// render merges site branding and the session user into the view data
// before rendering.
func render(c fiber.Ctx, cfg *config.Config, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["SiteTitle"]; !ok {
		data["SiteTitle"] = cfg.SiteTitle
	}
	data["BaseURL"] = cfg.BaseURL
	if user, ok := c.Locals("user").(*models.User); ok && user != nil {
		data["User"] = user
	}
	return c.Render(name, data)
}

// jsonError returns a failed API response in the {ok:false, error} envelope.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": message,
	})
}
