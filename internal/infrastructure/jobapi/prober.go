package jobapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/okanyild/listingflow/internal/infrastructure/resilience"
)

// Prober wraps the health check with a circuit breaker so that a job
// service that keeps failing is written off quickly instead of adding a
// probe round-trip to every submission. The probe itself is a single
// attempt; an unavailable answer is not an error, it routes the
// submission to the direct write path.
type Prober struct {
	client   *Client
	executor *resilience.Executor
	timeout  time.Duration
}

func NewProber(client *Client, executor *resilience.Executor, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Prober{
		client:   client,
		executor: executor,
		timeout:  timeout,
	}
}

func (p *Prober) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	call := func(ctx context.Context) error {
		return p.client.Health(ctx)
	}

	var err error
	if p.executor != nil {
		err = p.executor.Execute(probeCtx, "jobservice.health", call, classifyJobServiceError)
	} else {
		err = call(probeCtx)
	}
	if err != nil {
		slog.Info("job_service_unavailable", "error", err)
		return false
	}
	return true
}
