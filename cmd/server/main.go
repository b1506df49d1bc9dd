package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hqwei/stockdash/internal/config"
	"github.com/hqwei/stockdash/internal/dashboard"
	"github.com/hqwei/stockdash/internal/database"
	"github.com/hqwei/stockdash/internal/events"
	"github.com/hqwei/stockdash/internal/extract"
	"github.com/hqwei/stockdash/internal/scheduler"
	"github.com/hqwei/stockdash/internal/server"
	"github.com/hqwei/stockdash/internal/source"
	"github.com/hqwei/stockdash/internal/source/jobs"
	"github.com/hqwei/stockdash/internal/store"
	"github.com/hqwei/stockdash/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting stockdash")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	snapshotStore := store.New(db.Conn(), log)
	if err := snapshotStore.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire the load pipeline
	bus := events.NewBus(log)
	state := dashboard.NewState(log)
	extractor := extract.NewExtractor(log)
	detector := source.NewDetector(cfg.DataDir, cfg.CSVSource, log)
	cache := source.NewCache(cfg.CachePath, log)
	loader := source.NewLoader(detector, extractor, state, snapshotStore, cache, bus, log)

	// Scheduled refresh
	sched := scheduler.New(log)
	refreshJob := jobs.NewRefreshJob(loader, time.Minute, log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}

	// Initial load; fall back to the cached snapshot when the export is
	// unreachable so the dashboard is not empty at boot.
	if err := sched.RunNow(refreshJob); err != nil {
		log.Warn().Err(err).Msg("Initial snapshot load failed")
		loader.RestoreFromCache()
	}

	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Dashboard: dashboard.NewHandler(state, snapshotStore, loader, log),
		System:    server.NewSystemHandlers(state, log),
		Events:    server.NewEventsStreamHandler(bus, log),
		StaticDir: cfg.StaticDir,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
