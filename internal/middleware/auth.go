package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"

	"qrshort/internal/db"
	"qrshort/internal/models"
)

// sessionUserKey is the session key holding the logged-in user's id.
const sessionUserKey = "uid"

// AuthMiddleware resolves the session user. Core logic never reads ambient
// session state; handlers get the caller identity from c.Locals("user").
type AuthMiddleware struct {
	db *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{db: database}
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.sessionUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}
	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require it.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.sessionUser(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// Login stores the user id in the session.
func Login(c fiber.Ctx, userID uuid.UUID) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set(sessionUserKey, userID.String())
	return nil
}

// Logout destroys the session.
func Logout(c fiber.Ctx) {
	if sess := session.FromContext(c); sess != nil {
		sess.Destroy()
	}
}

func (m *AuthMiddleware) sessionUser(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	raw, _ := sess.Get(sessionUserKey).(string)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		sess.Destroy()
		return nil
	}
	user, err := m.db.GetUserByID(c.Context(), id)
	if err != nil {
		sess.Destroy()
		return nil
	}
	return user
}
