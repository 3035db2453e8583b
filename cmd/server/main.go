package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
	"github.com/appkivawa/pulseboard/app/api"
	"github.com/appkivawa/pulseboard/app/cfg"
	"github.com/appkivawa/pulseboard/app/compose"
	"github.com/appkivawa/pulseboard/app/database"
	"github.com/appkivawa/pulseboard/app/explore"
	"github.com/appkivawa/pulseboard/app/reconcile"
	"github.com/appkivawa/pulseboard/app/savestate"
	"github.com/appkivawa/pulseboard/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Pulseboard server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	// Repositories
	contentRepo := database.NewContentRepository(db)
	savedRepo := database.NewSavedItemRepository(db)
	prefsRepo := database.NewPrefsRepository(db)

	// Section layout
	sectionsConfig, err := compose.LoadConfig(appCfg.SectionsFile)
	if err != nil {
		slog.Error("Failed to load sections config", "file", appCfg.SectionsFile, "error", err)
		os.Exit(1)
	}
	builder := compose.NewBuilder(sectionsConfig)
	slog.Info("Section layout loaded", "cap", sectionsConfig.Cap)

	// Core components
	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.AggregatorTimeout) * time.Second,
	}
	client := aggregator.NewClient(appCfg.AggregatorURL, httpClient, appCfg.UserAgent)
	saveState := savestate.NewManager(savedRepo)
	reconciler := reconcile.NewReconciler(contentRepo)

	exploreCache := explore.NewCache(time.Duration(appCfg.ExploreCacheTTL) * time.Second)
	registry := explore.NewRegistry(client, exploreCache, appCfg.ExploreLimit)

	// Background maintenance
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(client, exploreCache, contentRepo)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	apiHandler := api.NewHandler(client, builder, saveState, reconciler,
		registry, contentRepo, savedRepo, prefsRepo, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
