package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okanyild/listingflow/internal/bootstrap"
	"github.com/okanyild/listingflow/internal/config"
	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/observability/logging"
	"github.com/okanyild/listingflow/internal/observability/metrics"
)

const serviceName = "listingflow-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", workerMetrics.Handler())
		metricsServer := &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeListingCreated(ctx, func(handlerCtx context.Context, event domain.ListingEvent) error {
		workerMetrics.StartIntake()
		workerMetrics.ObserveEventLag(serviceName, time.Since(event.CreatedAt))
		start := time.Now()

		intakeCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		intakeErr := app.IntakeUC.Intake(intakeCtx, event)

		workerMetrics.FinishIntake(serviceName, time.Since(start), intakeErr)
		return intakeErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
