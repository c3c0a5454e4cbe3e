package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/adapter/sqlite"
	"github.com/vertextoedge/diskwatch/internal/config"
	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/domain"
	"github.com/vertextoedge/diskwatch/internal/logger"
	"github.com/vertextoedge/diskwatch/internal/metrics"
	"github.com/vertextoedge/diskwatch/internal/service/monitor"
	"github.com/vertextoedge/diskwatch/internal/service/server"
	"github.com/vertextoedge/diskwatch/internal/service/watcher"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	diskutil.SetLogger(zapLogger)
	zapLogger.Info("starting diskwatch",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Open snapshot database
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Paths[0].Path, "diskwatch.db")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", dbPath))
	}
	defer store.Close()

	// Register Prometheus collectors
	metrics.Register(prometheus.DefaultRegisterer)

	// Create monitor
	monitorPaths := make([]monitor.Path, 0, len(cfg.Paths))
	for i := range cfg.Paths {
		p := &cfg.Paths[i]
		monitorPaths = append(monitorPaths, monitor.Path{
			Name:           p.Name,
			Path:           p.Path,
			MaxSizeBytes:   p.GetMaxSizeBytes(),
			CleanupEnabled: p.Cleanup.Enabled,
			StaleSuffixes:  p.GetStaleSuffixes(),
			StaleMaxAge:    p.GetStaleMaxAge(),
		})
	}

	monitorCfg := &monitor.Config{
		SampleInterval:  cfg.Monitor.GetSampleInterval(),
		Debounce:        cfg.Monitor.GetDebounce(),
		MaxDiskUsagePct: float64(cfg.Monitor.MaxDiskUsagePercent),
		CleanupInterval: cfg.Monitor.GetCleanupInterval(),
		Retention:       cfg.History.GetRetention(),
		PruneInterval:   cfg.History.GetPruneInterval(),
	}
	monitorService := monitor.New(monitorCfg, monitorPaths, store, zapLogger)

	monitorService.OnChange(func(snap domain.Snapshot) {
		fields := []zap.Field{
			zap.String("name", snap.Name),
			zap.String("dir_size", diskutil.FormatBytes(snap.DirSizeBytes)),
		}
		if snap.SpaceKnown() {
			fields = append(fields, zap.String("available", diskutil.FormatBytes(snap.AvailableBytes)))
		}
		zapLogger.Info("tracked path changed", fields...)
	})

	// Create filesystem watcher
	var watcherService *watcher.Service
	if cfg.Watch.Enabled {
		watcherPaths := make([]watcher.Path, 0, len(cfg.Paths))
		for _, p := range cfg.Paths {
			watcherPaths = append(watcherPaths, watcher.Path{Name: p.Name, Path: p.Path})
		}
		watcherCfg := &watcher.Config{
			Debounce: cfg.Monitor.GetDebounce(),
		}
		watcherService = watcher.New(watcherCfg, watcherPaths, monitorService, zapLogger)
	}

	// Create HTTP server
	serverCfg := &server.Config{
		BindAddr:     cfg.HTTP.BindAddr,
		ReadTimeout:  cfg.HTTP.GetReadTimeout(),
		WriteTimeout: cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:  cfg.HTTP.GetIdleTimeout(),
	}
	httpServer := server.New(serverCfg, store, monitorService, monitorService.Tracked(), zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Start monitor
	go func() {
		if err := monitorService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("monitor stopped with error", zap.Error(err))
		}
	}()

	// Start watcher
	if watcherService != nil {
		go func() {
			if err := watcherService.Start(ctx); err != nil && err != context.Canceled {
				zapLogger.Error("watcher stopped with error", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("application started successfully",
		zap.String("http_addr", cfg.HTTP.BindAddr),
		zap.Int("tracked_paths", len(cfg.Paths)),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	// Cancel context to stop monitor and watcher
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop services
	monitorService.Stop()
	if watcherService != nil {
		watcherService.Stop()
	}

	// Stop HTTP server
	if err := httpServer.Stop(shutdownCtx); err != nil {
		zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	zapLogger.Info("application stopped successfully")
}
