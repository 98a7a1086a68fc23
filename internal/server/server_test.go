package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
)

func TestDeriveEncryptionKey(t *testing.T) {
	key := deriveEncryptionKey("some-session-secret")

	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		t.Fatalf("key is not valid base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("decoded key length = %d, want 32", len(raw))
	}

	if deriveEncryptionKey("some-session-secret") != key {
		t.Error("same secret should derive the same key")
	}
	if deriveEncryptionKey("another-secret") == key {
		t.Error("different secrets should derive different keys")
	}
}

// TestSessionSurvivesCookieEncryption verifies that a session value written
// behind the encryptcookie middleware is readable on a follow-up request that
// replays the encrypted cookie, matching the production middleware order.
func TestSessionSurvivesCookieEncryption(t *testing.T) {
	app := fiber.New()

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-only-session-secret"),
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "no session")
		}
		sess.Set("uid", "4f2c9d10")
		return c.SendString("ok")
	})
	app.Get("/get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "no session")
		}
		uid, _ := sess.Get("uid").(string)
		return c.SendString(uid)
	})

	req, _ := http.NewRequest("POST", "/set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("set request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status = %d, want 200", resp.StatusCode)
	}

	req, _ = http.NewRequest("GET", "/get", nil)
	for _, cookie := range resp.Cookies() {
		req.AddCookie(cookie)
	}
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	defer resp2.Body.Close()

	body, _ := io.ReadAll(resp2.Body)
	if string(body) != "4f2c9d10" {
		t.Errorf("session value = %q, want %q", string(body), "4f2c9d10")
	}
}
