package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/server"
	"github.com/hyperjump/aidex/internal/storage"
	"github.com/hyperjump/aidex/internal/telemetry"
	"github.com/hyperjump/aidex/internal/watcher"
	"github.com/hyperjump/aidex/pkg/utils"
)

// metricsReloader counts catalog reloads triggered by the file watcher.
type metricsReloader struct {
	*catalog.Store
	metrics *telemetry.Metrics
}

func (r metricsReloader) Reload() error {
	err := r.Store.Reload()
	r.metrics.ObserveCatalogReload(err)
	return err
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (catalog reloads, requests, etc.)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.Bool("debug", debugMode),
	)

	store, err := catalog.NewStore(cfg.Catalog.Path, catalog.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	metrics := telemetry.NewMetrics(nil)
	srv, err := server.NewServer(store, st, cfg,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.WatchOrDefault() {
		w := watcher.ForCatalog(metricsReloader{Store: store, metrics: metrics}, watcher.WithLogger(logger))
		if err := w.Start(watchCtx); err != nil {
			return fmt.Errorf("start catalog watcher: %w", err)
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
