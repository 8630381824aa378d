package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"podsync/internal/config"
	"podsync/internal/database"
	"podsync/internal/events"
	"podsync/internal/history"
	"podsync/internal/logger"
	"podsync/internal/metrics"
	"podsync/internal/services/printify"
	"podsync/internal/worker"
	"podsync/internal/worker/processors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.ValidatePrintify(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	defer logger.Sync()

	db, err := database.New(cfg.DatabaseURL, database.Options{Driver: cfg.DatabaseDriver})
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	catalog := printify.NewClient(printify.Options{
		BaseURL:    cfg.Printify.BaseURL,
		APIToken:   cfg.Printify.APIToken,
		ShopID:     cfg.Printify.ShopID,
		Timeout:    cfg.Printify.Timeout,
		RetryCount: cfg.Printify.RetryCount,
		PageLimit:  cfg.Printify.PageLimit,
	}, logger)

	outcomes := events.NewPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOutcomeTopic), logger)
	defer outcomes.Close()

	processor := processors.NewSyncProcessor(processors.SyncProcessorConfig{
		Catalog:      catalog,
		ProductDelay: cfg.Sync.ProductDelay,
		Runs:         history.NewRepository(db.DB),
		Outcomes:     outcomes,
		Metrics:      metrics.New(prometheus.DefaultRegisterer),
	}, logger)

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              cfg.WorkerMetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped: %v", err)
			}
		}()
		defer metricsServer.Close()
	}

	// Initialize worker
	w := worker.New(worker.NewKafkaReader(cfg), processor, cfg.Sync.Interval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting worker...")
	w.Start(ctx)

	logger.Info("Shutting down worker...")
	w.Stop()
}
