package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"qrshort/internal/config"
	"qrshort/internal/db"
	"qrshort/internal/metrics"
	"qrshort/internal/models"
	"qrshort/internal/shortcode"
	"qrshort/internal/validation"
)

// recentScansLimit is how many scan events the stats endpoint returns.
const recentScansLimit = 30

// LinkHandler handles link creation, updates, stats and the HTML pages
// around them.
type LinkHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(database *db.DB, cfg *config.Config) *LinkHandler {
	return &LinkHandler{db: database, cfg: cfg}
}

// Home renders the creation page for logged-in users; guests get the
// simplified page.
func (h *LinkHandler) Home(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	if user == nil {
		return c.Redirect().To("/simple")
	}
	return render(c, h.cfg, "home", fiber.Map{"Username": user.Username})
}

// Simple renders the guest creation page; logged-in users go home.
func (h *LinkHandler) Simple(c fiber.Ctx) error {
	if user, _ := c.Locals("user").(*models.User); user != nil {
		return c.Redirect().To("/")
	}
	return render(c, h.cfg, "simple", nil)
}

// Dashboard lists the authenticated user's links, newest first.
func (h *LinkHandler) Dashboard(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	links, err := h.db.GetLinksByOwner(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return render(c, h.cfg, "dashboard", fiber.Map{
		"Username": user.Username,
		"Links":    links,
	})
}

// Create handles POST /api/create for both guests and members.
func (h *LinkHandler) Create(c fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	tier := validation.TierGuest
	if user != nil {
		tier = validation.TierMember
	}

	var req validation.CreateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	norm, verr := validation.NormalizeLinkInput(tier, &req)
	if verr != nil {
		status := fiber.StatusBadRequest
		if verr.NeedLogin {
			status = fiber.StatusForbidden
		}
		return c.Status(status).JSON(fiber.Map{
			"ok":         false,
			"error":      verr.Message,
			"need_login": verr.NeedLogin,
		})
	}

	code, err := shortcode.GenerateUnique(c.Context(), h.db)
	if err != nil {
		return err
	}

	link := &models.Link{
		Code:          code,
		Kind:          norm.Kind,
		Title:         norm.Title,
		TargetURL:     norm.TargetURL,
		Payload:       norm.Payload,
		ViewerEnabled: norm.ViewerEnabled,
		ExpiresAt:     norm.ExpiresAt,
		MaxScans:      norm.MaxScans,
	}
	if user != nil {
		link.UserID = &user.ID
	}

	if err := h.db.CreateLink(c.Context(), link); err != nil {
		if errors.Is(err, db.ErrDuplicateCode) {
			// The bounded-retry generator exhausted its attempts and the
			// unique index caught the collision.
			return jsonError(c, fiber.StatusConflict, "could not allocate a unique code, please retry")
		}
		return err
	}

	tierLabel := "member"
	if user == nil {
		tierLabel = "guest"
	}
	metrics.RecordLinkCreated(string(link.Kind), tierLabel)

	return c.JSON(fiber.Map{
		"ok":        true,
		"code":      code,
		"short_url": h.cfg.ShortURL(code),
		"guest":     user == nil,
	})
}

// Update handles POST /api/update: owner-only, url-kind links only, changes
// the destination and nothing else.
func (h *LinkHandler) Update(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var body struct {
		Code      string `json:"code"`
		TargetURL string `json:"target_url"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	code := strings.TrimSpace(body.Code)
	if code == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing code")
	}

	target := validation.NormalizeTargetURL(body.TargetURL)
	if !validation.IsHTTPURL(target) {
		return jsonError(c, fiber.StatusBadRequest, "invalid URL (http/https only)")
	}

	link, err := h.db.GetLinkByCodeAndOwner(c.Context(), code, user.ID)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return err
	}
	if link.ViewerEnabled {
		return jsonError(c, fiber.StatusBadRequest, "payload links (WiFi/text/vCard) have no destination URL")
	}

	if err := h.db.UpdateLinkTarget(c.Context(), code, user.ID, target); err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Stats handles GET /api/stats/:code: total scan count plus the most recent
// scan events, owner-only.
func (h *LinkHandler) Stats(c fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	code := c.Params("code")

	link, err := h.db.GetLinkByCodeAndOwner(c.Context(), code, user.ID)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not found")
		}
		return err
	}

	total, err := h.db.CountScans(c.Context(), link.ID)
	if err != nil {
		return err
	}
	scans, err := h.db.RecentScans(c.Context(), link.ID, recentScansLimit)
	if err != nil {
		return err
	}

	recent := make([]fiber.Map, 0, len(scans))
	for _, s := range scans {
		recent = append(recent, fiber.Map{
			"ts":  s.Timestamp.Unix(),
			"ua":  s.UserAgent,
			"ref": s.Referer,
		})
	}

	return c.JSON(fiber.Map{
		"ok":             true,
		"code":           link.Code,
		"kind":           link.Kind,
		"title":          link.Title,
		"viewer_enabled": link.ViewerEnabled,
		"target_url":     link.TargetURL,
		"expires_at":     link.ExpiresAt,
		"max_scans":      link.MaxScans,
		"total_scans":    total,
		"recent":         recent,
	})
}
