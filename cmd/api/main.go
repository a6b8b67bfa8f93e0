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

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/probelab/page-resource-inspector/internal/inspector"
	"github.com/probelab/page-resource-inspector/internal/pagescan"
	"github.com/probelab/page-resource-inspector/internal/platform/config"
	"github.com/probelab/page-resource-inspector/internal/platform/logger"
	"github.com/probelab/page-resource-inspector/internal/platform/middleware"
	"github.com/probelab/page-resource-inspector/internal/platform/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("INSPECTOR_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	telemetry.Init()

	engine := pagescan.NewEngine(
		pagescan.NewHTTPClient(),
		pagescan.NewStylesheetCrawler(),
		pagescan.NewProber(cfg.ProbeConcurrency),
		cfg.MaxResources,
	)
	service := inspector.NewService(engine, log)
	transport := inspector.NewTransport(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	transport.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
