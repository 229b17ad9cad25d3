package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"padel-app/internal/audit"
	"padel-app/internal/config"
	"padel-app/internal/importer"
	"padel-app/internal/store"
	"padel-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appStore, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer appStore.Close()

	if mem, ok := appStore.(*store.MemoryStore); ok && !cfg.IsProduction() {
		if err := importer.SeedDemo(ctx, mem, logger); err != nil {
			logger.Error("seed demo data", "error", err)
			os.Exit(1)
		}
	}

	events := audit.NewDispatcher(cfg.EventBuffer, logger, audit.LogSink(logger), audit.StoreSink(appStore))
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	eventsDone := make(chan struct{})
	go func() {
		events.Run(eventsCtx)
		close(eventsDone)
	}()

	server := web.NewServer(appStore, events, cfg.Standings(), logger, web.Options{
		AdminKeyHash:      cfg.AdminKeyHash,
		DefaultNumSets:    cfg.DefaultNumSets,
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		RateLimitEnabled:  cfg.RateLimitEnabled,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})
	if cfg.AdminKeyHash == "" {
		logger.Warn("ADMIN_KEY_HASH is not set, admin routes are disabled")
	}
	handler := server.Routes()

	if config.OnLambda() {
		logger.Info("starting in lambda mode")
		lambda.Start(httpadapter.New(handler).ProxyWithContext)
		return
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("starting http server", "addr", cfg.HTTPAddr, "app", cfg.App)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	stopEvents()
	<-eventsDone
	if dropped := events.Dropped(); dropped > 0 {
		logger.Warn("audit events dropped", "count", dropped)
	}
	logger.Info("server stopped")
}
