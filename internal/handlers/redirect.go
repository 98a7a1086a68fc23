package handlers

import (
	"github.com/gofiber/fiber/v3"

	"qrshort/internal/metrics"
	"qrshort/internal/resolver"
)

// RedirectHandler is the /r/:code entry point into the resolution pipeline.
type RedirectHandler struct {
	resolver *resolver.Resolver
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(r *resolver.Resolver) *RedirectHandler {
	return &RedirectHandler{resolver: r}
}

// Resolve runs the pipeline and maps the outcome onto the HTTP surface:
// 302 for redirects and the viewer hop, plain-text bodies for rejections.
func (h *RedirectHandler) Resolve(c fiber.Ctx) error {
	code := c.Params("code")

	meta := resolver.RequestMeta{
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		Referer:      c.Get(fiber.HeaderReferer),
		ForwardedFor: c.Get(fiber.HeaderXForwardedFor),
		RemoteAddr:   c.IP(),
	}

	res, err := h.resolver.Resolve(c.Context(), code, meta)
	if err != nil {
		return err
	}
	metrics.RecordResolution(res.Outcome.String())

	switch res.Outcome {
	case resolver.OutcomeRedirect:
		return c.Redirect().Status(fiber.StatusFound).To(res.Target)
	case resolver.OutcomeViewPayload:
		// Internal hop to the viewer route so the short code stays shareable
		// independent of content changes.
		return c.Redirect().Status(fiber.StatusFound).To("/v/" + code)
	case resolver.OutcomeExpired:
		return c.Status(fiber.StatusGone).SendString("this link has expired")
	case resolver.OutcomeQuotaExceeded:
		return c.Status(fiber.StatusTooManyRequests).SendString("this link reached its scan limit")
	case resolver.OutcomeInvalidTarget:
		return c.Status(fiber.StatusBadRequest).SendString("invalid destination")
	default:
		return c.Status(fiber.StatusNotFound).SendString("link not found")
	}
}
