// tabletopd is the virtual tabletop backend.
//
// It serves the REST API, the WebSocket realtime channel, and uploaded
// image files for a single game group: one or more GMs and their
// players.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/dmavtt/tabletop-core/migrations"

	"github.com/dmavtt/tabletop-core/internal/api"
	"github.com/dmavtt/tabletop-core/internal/auth"
	"github.com/dmavtt/tabletop-core/internal/dice"
	"github.com/dmavtt/tabletop-core/internal/infrastructure/config"
	"github.com/dmavtt/tabletop-core/internal/infrastructure/database"
	"github.com/dmavtt/tabletop-core/internal/infrastructure/logging"
	"github.com/dmavtt/tabletop-core/internal/journal"
	"github.com/dmavtt/tabletop-core/internal/library"
	"github.com/dmavtt/tabletop-core/internal/scene"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tabletopd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	sceneRepo := scene.NewSQLiteRepository(db.DB)
	diceRepo := dice.NewSQLiteRepository(db.DB)
	journalRepo := journal.NewSQLiteRepository(db.DB)
	libraryRepo := library.NewSQLiteRepository(db.DB)

	authSvc := auth.NewService(userRepo, cfg.Security.JWT.Secret, cfg.Security.JWT.TTLHours)

	// Seed the first GM account on an empty user table. SeedGM logs the
	// generated password once when none is configured.
	if _, err := auth.SeedGM(ctx, userRepo,
		cfg.Security.Admin.Username,
		os.Getenv("TABLETOP_ADMIN_PASSWORD"),
		log.Logger,
	); err != nil {
		return fmt.Errorf("seeding gm account: %w", err)
	}

	// Ensure the uploads directory exists
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	log.Info("uploads directory ready", "dir", cfg.Uploads.Dir)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:     cfg.Server,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		UploadsDir: cfg.Uploads.Dir,
		Logger:     log,
		Auth:       authSvc,
		Users:      userRepo,
		Scenes:     sceneRepo,
		Dice:       diceRepo,
		Journal:    journalRepo,
		Library:    libraryRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server listening",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("tabletopd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses TABLETOP_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TABLETOP_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
