package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fusering/fusering/internal/field"
)

func main() {
	cfg, err := loadServerConfig()
	if err != nil {
		NewLogger("error").Fatalf("invalid configuration: %v", err)
	}

	logger := NewLogger(cfg.LogLevel)

	catalog := field.DefaultCatalog()
	if cfg.CatalogFile != "" {
		catalog, err = field.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			logger.Fatalf("cannot load catalog: %v", err)
		}
		logger.Infof("Loaded catalog from %s (%d tokens)", cfg.CatalogFile, catalog.Size())
	}

	srv := NewServer(logger, catalog)
	srv.SetSnapshotDir(cfg.SnapshotDir)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/games", srv.handleGamesRoutes)
	mux.HandleFunc("/games/", srv.handleGamesRoutes)
	mux.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)
	mux.HandleFunc("/ws/", srv.handleWebSocket)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("fusering-server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Infof("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return srv.Close()
	})

	if err := group.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
