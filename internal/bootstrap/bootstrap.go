package bootstrap

import (
	"context"
	"fmt"

	"github.com/okanyild/listingflow/internal/config"
	"github.com/okanyild/listingflow/internal/core/ports"
	"github.com/okanyild/listingflow/internal/core/usecase"
	"github.com/okanyild/listingflow/internal/infrastructure/jobapi"
	"github.com/okanyild/listingflow/internal/infrastructure/queue/nats"
	"github.com/okanyild/listingflow/internal/infrastructure/repository/postgres"
	"github.com/okanyild/listingflow/internal/infrastructure/resilience"
	"github.com/okanyild/listingflow/internal/infrastructure/uploadapi"
	"github.com/okanyild/listingflow/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Listings ports.ListingReader
	Pipeline ports.ListingPipeline
	IntakeUC ports.ModerationIntake

	PipelineMetrics *metrics.PipelineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	categories := postgres.NewCategoryRepository(db)
	listings := postgres.NewListingRepository(db, categories)
	if err := listings.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	moderation := postgres.NewModerationRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	jobClient := jobapi.New(cfg.JobServiceURL, cfg.SubmitTimeout)
	uploadClient := uploadapi.New(cfg.UploadServiceURL, cfg.UploadTimeout)
	prober := jobapi.NewProber(jobClient, executor, cfg.ProbeTimeout)

	pipelineMetrics := metrics.NewPipelineMetrics(service)
	poller := usecase.NewStatusPoller(jobClient, uploadClient, cfg.PollInterval, cfg.PollMaxAttempts, pipelineMetrics)
	pipeline := usecase.NewSubmitListingUseCase(
		prober,
		uploadClient,
		categories,
		jobClient,
		poller,
		listings,
		queue,
		pipelineMetrics,
	)
	intakeUC := usecase.NewModerationIntakeUseCase(moderation)

	return &App{
		Config: cfg,

		Queue:    queue,
		Listings: listings,
		Pipeline: pipeline,
		IntakeUC: intakeUC,

		PipelineMetrics: pipelineMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
