// Package main is the entry point for the linkvault server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main"
// package. The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars)
// 2. Create dependencies (logger, data directory)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.). This separation keeps the app testable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points. A
// project might have multiple executables (e.g., cmd/server, cmd/migrate);
// each gets its own directory with its own main.go.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"linkvault/internal/server"
)

// config is everything the server reads from the environment, all under the
// LV_ prefix. envconfig maps LV_PORT → Port, LV_DB_PATH → DBPath, and so on,
// applies the defaults, and enforces `required` — one declaration instead of
// a pile of os.Getenv calls with hand-rolled parsing.
type config struct {
	Port     int           `default:"8080"`
	DBPath   string        `split_words:"true" default:"data/linkvault.db"`
	TokenTTL time.Duration `split_words:"true" default:"24h"`

	// Generate with: openssl rand -hex 32
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	LogLevel string `split_words:"true" default:"info"`

	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `envconfig:"GITHUB_CALLBACK_URL"`
}

func main() {
	// === 1. READ CONFIGURATION ===
	var cfg config
	if err := envconfig.Process("lv", &cfg); err != nil {
		// Logger isn't up yet — stderr is all we have.
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// slog is Go's structured logger (1.21+). Text output for humans; swap
	// the handler for slog.NewJSONHandler when shipping logs to a collector.
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// === 3. ENSURE THE DATA DIRECTORY EXISTS ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. DERIVE THE OAUTH CALLBACK ===
	// Defaults to localhost for local development; production sets
	// LV_GITHUB_CALLBACK_URL to the public URL registered with GitHub.
	callbackURL := cfg.GitHubCallbackURL
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		logger.Info("GitHub OAuth not configured — only email/password login available")
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		DBPath:             cfg.DBPath,
		TokenTTL:           cfg.TokenTTL,
		JWTSecret:          cfg.JWTSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		GitHubCallbackURL:  callbackURL,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
