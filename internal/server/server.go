// Package server is the composition root: it wires the database, services,
// handlers, and routes, and owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/catalog-server/internal/auth"
	"github.com/sakif/catalog-server/internal/config"
	"github.com/sakif/catalog-server/internal/handler"
	"github.com/sakif/catalog-server/internal/middleware"
	sqliteRepo "github.com/sakif/catalog-server/internal/repository/sqlite"
	"github.com/sakif/catalog-server/internal/service"
)

// Server holds the router, configuration, and the resources it owns. The
// database connection is closed during shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the dependency chain: database → services → handlers →
// routes. Each layer receives only what it needs; handlers never touch the
// database and services never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services and handlers, and
// registers every route.
//
// Middleware order: RequestID → RealIP → Recoverer → request logging →
// OptionalAuth. OptionalAuth runs globally so any route can see who is
// asking; routes that require a session add RequireAuth on top.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	google := auth.NewGoogleProvider(
		s.cfg.Auth.GoogleClientID,
		s.cfg.Auth.GoogleClientSecret,
		s.cfg.Auth.GoogleRedirectURL,
	)

	users := sqliteRepo.NewUserStore(s.db)
	tags := sqliteRepo.NewTagStore(s.db)
	items := sqliteRepo.NewItemStore(s.db)

	authService := service.NewAuthService(users, tokens, s.logger)
	catalogService := service.NewCatalogService(tags, items, s.logger)
	adminService := service.NewAdminService(users, s.logger)

	authHandler := handler.NewAuthHandler(google, authService,
		int(s.cfg.Auth.TokenTTL.Seconds()), s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, authService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, authService, s.logger)
	feedHandler := handler.NewFeedHandler(catalogService, s.cfg.Server.BaseURL, s.logger)

	pageHandler, err := handler.NewPageHandler(
		s.cfg.Server.TemplateDir, catalogService, authService, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.OptionalAuth(tokens))

	// HTML pages
	s.router.Get("/", pageHandler.HandleIndex)
	s.router.Get("/catalog/", pageHandler.HandleIndex)
	s.router.Get("/catalog/tags/view/{name}", pageHandler.HandleTagPage)
	s.router.Get("/catalog/items/view/{slug}", pageHandler.HandleItemPage)

	// Public JSON + feed
	s.router.Get("/catalog.json", catalogHandler.HandleCatalog)
	s.router.Get("/catalog/tags.json", catalogHandler.HandleListTags)
	s.router.Get("/catalog/items.json", catalogHandler.HandleListItems)
	s.router.Get("/catalog/tags/view/{name}.json", catalogHandler.HandleTagJSON)
	s.router.Get("/catalog/items/view/{slug}.json", catalogHandler.HandleItemJSON)
	s.router.Get("/catalog/recent.atom", feedHandler.HandleRecentFeed)

	// OAuth flow + session
	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	// Mutation API. These routes stay behind OptionalAuth only: the
	// authorization pipeline reports a missing session as a typed 401,
	// which RequireAuth's flat error body couldn't.
	s.router.Route("/api", func(r chi.Router) {
		r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)

		r.Post("/tags", catalogHandler.HandleCreateTag)
		r.Put("/tags/{name}", catalogHandler.HandleRenameTag)
		r.Delete("/tags/{name}", catalogHandler.HandleDeleteTag)

		r.Post("/items", catalogHandler.HandleCreateItem)
		r.Put("/items/{id}", catalogHandler.HandleUpdateItem)
		r.Delete("/items/{id}", catalogHandler.HandleDeleteItem)

		r.Get("/admin/users", adminHandler.HandleListUsers)
		r.Put("/admin/users/{id}/activation", adminHandler.HandleSetActivation)
	})

	return nil
}

// Start runs the HTTP server until a shutdown signal or server error.
// Shutdown drains in-flight requests within the configured timeout, then
// closes the database so the WAL is flushed and the file lock released.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("base_url", s.cfg.Server.BaseURL),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
