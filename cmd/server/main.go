package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/content-lifecycle-console/internal/api"
	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/database"
	"github.com/content-lifecycle-console/internal/remote"
	"github.com/content-lifecycle-console/internal/repository"
	"github.com/content-lifecycle-console/internal/service"
	"github.com/content-lifecycle-console/internal/session"
	"github.com/content-lifecycle-console/pkg/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back all migrations and exit")
	flag.Parse()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Content Lifecycle Console...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *rollback {
		if err := db.MigrateDown(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back database migrations")
		}
		log.Info().Msg("Migrations rolled back")
		return
	}

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Session state and the remote content API share the persisted tokens
	sessions := session.New(repos.State, log)
	client := remote.New(cfg.Remote.BaseURL, cfg.Remote.Timeout, sessions, log,
		remote.WithObserver(service.ObserveRemote),
	)

	// Initialize services
	services := service.NewServices(repos, sessions, client, cfg, log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	services.Audit.Start(ctx)
	if err := services.Refresher.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start refresh scheduler")
	}

	// Initialize router
	router := api.NewRouter(services, cfg, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("remote", cfg.Remote.BaseURL).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop background work after the last request has been served
	services.Refresher.Stop()
	services.Audit.Stop()

	log.Info().Msg("Server exited gracefully")
}
