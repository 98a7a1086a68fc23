package config

import (
	"os"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string // public base used to build short URLs

	// Database
	DatabaseURL string

	// Session
	SessionSecret string // used for cookie encryption (min 32 chars)
	RedisURL      string // optional: session storage for multi-process deployments

	// CORS
	CORSOrigins string // comma-separated allowed origins

	// Site branding
	SiteTitle string
}

// Load reads configuration from environment variables with development
// defaults. DATABASE_URL, BASE_URL and SESSION_SECRET must be supplied in
// production.
func Load() *Config {
	return &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/qrshort?sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:      getEnv("REDIS_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		SiteTitle:     getEnv("SITE_TITLE", "QRShort"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// ShortURL builds the public short URL for a code.
func (c *Config) ShortURL(code string) string {
	return c.BaseURL + "/r/" + code
}
