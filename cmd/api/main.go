package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/okanyild/listingflow/internal/adapters/http"
	"github.com/okanyild/listingflow/internal/bootstrap"
	"github.com/okanyild/listingflow/internal/config"
	"github.com/okanyild/listingflow/internal/observability/logging"
	"github.com/okanyild/listingflow/internal/observability/metrics"
)

const serviceName = "listingflow-api"

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

	router := httpadapter.NewRouter(app.Pipeline, app.Listings)
	httpMetrics := metrics.NewHTTPServerMetrics(serviceName, app.PipelineMetrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.PipelineMetrics.Handler())
	mux.Handle("/", httpMetrics.Middleware(serviceName, router.Handler(cfg)))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
