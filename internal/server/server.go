// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "read config, start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads Config from the environment and calls New(), which builds:
//
//	sqlite.DB → BookmarkService / NoteService / FeedService / AuthService
//	         → BookmarkHandler / NoteHandler / FeedHandler / AuthHandler
//
// This is the "composition root" pattern — all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"linkvault/internal/auth"
	"linkvault/internal/handler"
	"linkvault/internal/middleware"
	sqliteRepo "linkvault/internal/repository/sqlite"
	"linkvault/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy
// to add new options without changing function signatures, and lets main.go
// load everything from the environment in one place.
type Config struct {
	Port     int
	DBPath   string
	TokenTTL time.Duration

	// JWTSecret signs session tokens. The server refuses to start without it
	// — a guessable default here would make every deployment forgeable.
	JWTSecret string

	// GitHub OAuth. All three must be set for the OAuth routes to register;
	// email+password login works without them.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. When the server shuts down we
// must close it to flush the WAL and release the file lock — handled in
// Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with the
// sqlite driver package. Import aliases are common in Go when package names
// would otherwise collide or be unclear.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("server: JWT secret is required")
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /health                → liveness probe (public)
//	POST   /api/auth/register     → create account (public)
//	POST   /api/auth/login        → issue JWT (public)
//	POST   /api/auth/logout       → clear JWT cookie (public)
//	GET    /api/me                → current user (auth)
//	GET    /api/bookmarks         → list own bookmarks (auth + active)
//	POST   /api/bookmarks         → create bookmark
//	GET    /api/bookmarks/{id}    → get one
//	PATCH  /api/bookmarks/{id}    → partial update (PUT accepted too)
//	DELETE /api/bookmarks/{id}    → delete
//	/api/notes...                 → same shape for notes
//	GET    /seed                  → public crawl feed, plain text
//	GET    /seed.json             → public crawl feed, JSON
//	GET    /seed/intervals        → interval index
//	GET    /seed/{interval}       → one interval's feed
//	GET    /auth/github/login     → OAuth redirect (only when configured)
//	GET    /auth/github/callback  → OAuth callback
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === AUTH PLUMBING ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	// === SERVICES ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) implements every repository interface
	//   Services receive the repository interfaces, never the concrete DB
	//   Handlers receive the services, never the repositories
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	bookmarkService := service.NewBookmarkService(s.db, s.logger)
	noteService := service.NewNoteService(s.db, s.logger)
	feedService := service.NewFeedService(s.db, s.logger)

	// === HANDLERS ===
	authHandler := handler.NewAuthHandler(authService, github, s.config.TokenTTL, s.logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarkService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, s.logger)

	// === HEALTH ===
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// === PUBLIC FEED ROUTES ===
	// Mounted outside the auth middleware on purpose: the feed projection
	// contains nothing private.
	// Registered flat rather than as a sub-Route: chi would otherwise Mount
	// over the already-registered GET /seed. The static /seed/intervals wins
	// over the {interval} parameter in chi's routing trie.
	s.router.Get("/seed", feedHandler.HandlePlain)
	s.router.Get("/seed.json", feedHandler.HandleEntries)
	s.router.Get("/seed/intervals", feedHandler.HandleIntervals)
	s.router.Get("/seed/{interval}", feedHandler.HandleByInterval)

	// === OAUTH ROUTES ===
	// Only registered when GitHub credentials are configured — an
	// unconfigured provider 404s cleanly instead of failing mid-flow.
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// === API ROUTES ===
	s.router.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Authenticated-only: identity required but no active check, so a
		// deactivated user can still see who they are.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})

		// Authenticated AND active: all content routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(auth.RequireActive(authService))

			r.Get("/bookmarks", bookmarkHandler.HandleList)
			r.Post("/bookmarks", bookmarkHandler.HandleCreate)
			r.Get("/bookmarks/{id}", bookmarkHandler.HandleGet)
			r.Patch("/bookmarks/{id}", bookmarkHandler.HandleUpdate)
			r.Put("/bookmarks/{id}", bookmarkHandler.HandleUpdate)
			r.Delete("/bookmarks/{id}", bookmarkHandler.HandleDelete)

			r.Get("/notes", noteHandler.HandleList)
			r.Post("/notes", noteHandler.HandleCreate)
			r.Get("/notes/{id}", noteHandler.HandleGet)
			r.Patch("/notes/{id}", noteHandler.HandleUpdate)
			r.Put("/notes/{id}", noteHandler.HandleUpdate)
			r.Delete("/notes/{id}", noteHandler.HandleDelete)
		})
	})

	return nil
}

// Router exposes the configured router, mainly for tests that want to drive
// the full stack with httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent
// state. The `defer s.db.Close()` ensures this happens even on panic.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
