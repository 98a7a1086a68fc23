package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/skip2/go-qrcode"

	"qrshort/internal/config"
	"qrshort/internal/db"
)

// qrSize is the rendered PNG edge length in pixels.
const qrSize = 256

// QRHandler renders a link's short URL as a QR code PNG.
type QRHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewQRHandler creates a new QR handler.
func NewQRHandler(database *db.DB, cfg *config.Config) *QRHandler {
	return &QRHandler{db: database, cfg: cfg}
}

// PNG handles GET /api/qr/:code.
func (h *QRHandler) PNG(c fiber.Ctx) error {
	code := c.Params("code")

	if _, err := h.db.GetLinkByCode(c.Context(), code); err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return err
	}

	png, err := qrcode.Encode(h.cfg.ShortURL(code), qrcode.Medium, qrSize)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+code+`.png"`)
	return c.Send(png)
}
