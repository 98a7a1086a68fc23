package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrshort/internal/db"
	"qrshort/internal/handlers"
	"qrshort/internal/middleware"
	"qrshort/internal/resolver"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database, s.Cfg)
	linkHandler := handlers.NewLinkHandler(database, s.Cfg)
	redirectHandler := handlers.NewRedirectHandler(resolver.New(database))
	viewerHandler := handlers.NewViewerHandler(database, s.Cfg)
	qrHandler := handlers.NewQRHandler(database, s.Cfg)
	healthHandler := handlers.NewHealthHandler(database)

	// Auth routes
	s.App.Get("/login", authHandler.LoginPage)
	s.App.Post("/login", authHandler.Login)
	s.App.Get("/register", authHandler.RegisterPage)
	s.App.Post("/register", authHandler.Register)
	s.App.Get("/logout", authHandler.Logout)

	// Frontend routes
	s.App.Get("/", authMiddleware.OptionalAuth, linkHandler.Home)
	s.App.Get("/simple", authMiddleware.OptionalAuth, linkHandler.Simple)
	s.App.Get("/dashboard", authMiddleware.RequireAuth, linkHandler.Dashboard)

	// Link API - creation is open to guests, management requires auth
	s.App.Post("/api/create", authMiddleware.OptionalAuth, linkHandler.Create)
	s.App.Post("/api/update", authMiddleware.RequireAuth, linkHandler.Update)
	s.App.Get("/api/stats/:code", authMiddleware.RequireAuth, linkHandler.Stats)
	s.App.Get("/api/qr/:code", qrHandler.PNG)

	// Resolution routes
	s.App.Get("/r/:code", redirectHandler.Resolve)
	s.App.Get("/v/:code", viewerHandler.Show)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
