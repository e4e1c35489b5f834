package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"streamgate/internal/api"
	"streamgate/internal/catalog"
	"streamgate/internal/category"
	"streamgate/internal/classifier"
	"streamgate/internal/config"
	"streamgate/internal/logger"
	"streamgate/internal/refresh"
	"streamgate/internal/resolver"
	"streamgate/internal/store"
	"streamgate/internal/xtream"
)

func runServe(cmd *cobra.Command, args []string) {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg := config.Get()
	logger.InitializeLoggers(cfg.Logging.App.Level, cfg.Logging.Store.Level)
	log := logger.AppLogger()

	st, err := store.New(cfg.Paths.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}

	allocator, err := category.NewAllocator(st)
	if err != nil {
		return fmt.Errorf("failed to load category ids: %w", err)
	}
	builder := catalog.NewBuilder(classifier.New(), allocator)

	pool, err := ants.NewPool(cfg.Refresh.Workers, ants.WithPreAlloc(true))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	xtreamSvc := xtream.NewService(st, builder, pool,
		time.Duration(cfg.Cache.PlayerAPITTLSeconds)*time.Second, cfg.Cache.MaxEntries)

	adapter := resolver.NewAdapter(cfg.Resolver.Command,
		time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second)
	registry := resolver.LoadRegistry(cfg.Paths.ResolversDir, cfg.Paths.DomainsFile)
	resolverSvc := resolver.NewService(adapter, registry, st, cfg.Resolver.ProxyURL)

	refresher := refresh.New(st, pool, xtreamSvc, refresh.Options{
		CheckEvery:       time.Duration(cfg.Refresh.CheckEverySeconds) * time.Second,
		FetchTimeout:     time.Duration(cfg.Refresh.TimeoutSeconds) * time.Second,
		FetchesPerSecond: cfg.Refresh.FetchesPerSecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Refresh.Enabled {
		go refresher.Run(ctx)
	}

	server := api.NewServer(api.Dependencies{
		Store:        st,
		Xtream:       xtreamSvc,
		Resolver:     resolverSvc,
		Refresher:    refresher,
		ConfigDir:    cfg.Paths.ConfigDir,
		ResolversDir: cfg.Paths.ResolversDir,
		ProxyURL:     cfg.Resolver.ProxyURL,
		Version:      version,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.WithFields(map[string]interface{}{
		"port": cfg.Server.Port,
	}).Info("server started")

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
