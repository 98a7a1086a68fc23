package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"qrshort/internal/config"
	"qrshort/internal/db"
	"qrshort/internal/viewer"
)

// ViewerHandler renders payload links at /v/:code.
type ViewerHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewViewerHandler creates a new viewer handler.
func NewViewerHandler(database *db.DB, cfg *config.Config) *ViewerHandler {
	return &ViewerHandler{db: database, cfg: cfg}
}

// Show renders the stored payload for human viewing. Plain url links fall
// back to the redirect path.
func (h *ViewerHandler) Show(c fiber.Ctx) error {
	code := c.Params("code")

	link, err := h.db.GetLinkByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "link not found")
		}
		return err
	}

	vm, err := viewer.Render(link)
	if err != nil {
		if errors.Is(err, viewer.ErrNotViewer) {
			return c.Redirect().To("/r/" + code)
		}
		return err
	}

	return render(c, h.cfg, "view_payload", fiber.Map{
		"View":     vm,
		"ShortURL": h.cfg.ShortURL(code),
	})
}
