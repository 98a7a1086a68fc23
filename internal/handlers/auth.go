package handlers

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	"qrshort/internal/config"
	"qrshort/internal/db"
	"qrshort/internal/middleware"
	"qrshort/internal/models"
)

const (
	minUsernameLen = 3
	minPasswordLen = 4
)

// AuthHandler handles session-based username/password authentication.
type AuthHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(database *db.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: database, cfg: cfg}
}

// credentialsLongEnough checks the registration minimums in characters, not
// bytes, so a multi-byte username like "ñé" does not pass as three.
func credentialsLongEnough(username, password string) bool {
	return utf8.RuneCountInString(username) >= minUsernameLen &&
		utf8.RuneCountInString(password) >= minPasswordLen
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c fiber.Ctx) error {
	return render(c, h.cfg, "login", nil)
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := strings.TrimSpace(c.FormValue("password"))

	user, err := h.db.GetUserByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return render(c, h.cfg, "login", fiber.Map{"Error": "invalid username or password"})
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return render(c, h.cfg, "login", fiber.Map{"Error": "invalid username or password"})
	}

	if err := middleware.Login(c, user.ID); err != nil {
		return err
	}
	return c.Redirect().To("/")
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(c fiber.Ctx) error {
	return render(c, h.cfg, "register", nil)
}

// Register creates a new account and sends the user to the login page.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := strings.TrimSpace(c.FormValue("password"))

	if !credentialsLongEnough(username, password) {
		return render(c, h.cfg, "register", fiber.Map{
			"Error": "username needs at least 3 characters and password at least 4",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := h.db.CreateUser(c.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			return render(c, h.cfg, "register", fiber.Map{"Error": "that username is taken"})
		}
		return err
	}

	return c.Redirect().To("/login")
}

// Logout clears the session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	middleware.Logout(c)
	return c.Redirect().To("/")
}
