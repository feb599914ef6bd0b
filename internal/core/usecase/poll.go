package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/core/ports"
)

// StatusPoller drives a submitted job to a terminal state. Each cycle
// queries the current-generation status endpoint first; a "not found"
// answer triggers a single query against the legacy endpoint before the
// cycle concludes. Transient failures are retried up to the attempt bound,
// except on the final attempt where the underlying error surfaces.
type StatusPoller struct {
	primary     ports.JobStatusSource
	legacy      ports.JobStatusSource
	interval    time.Duration
	maxAttempts int
	observer    ports.PipelineObserver

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewStatusPoller(primary, legacy ports.JobStatusSource, interval time.Duration, maxAttempts int, observer ports.PipelineObserver) *StatusPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &StatusPoller{
		primary:     primary,
		legacy:      legacy,
		interval:    interval,
		maxAttempts: maxAttempts,
		observer:    observer,
		sleep:       sleepContext,
	}
}

func (p *StatusPoller) finish(attempts int, outcome string) {
	if p.observer != nil {
		p.observer.PollFinished(attempts, outcome)
	}
}

// pollOutcome is the typed result of one status query; the retry decision
// inspects the tag instead of classifying recovered errors downstream.
type pollOutcome struct {
	job          domain.Job
	transientErr error
	fatalErr     error
}

// Poll blocks until the job terminates, the attempt bound is exhausted or
// the context ends. On completion it returns the listing id extracted from
// the job result. Progress values are pushed to the channel without
// blocking whenever the backend reports them.
func (p *StatusPoller) Poll(ctx context.Context, jobID, actorID string, progress chan<- int) (string, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		outcome := p.queryOnce(ctx, jobID, actorID)

		if outcome.fatalErr != nil {
			p.finish(attempt, "fatal")
			return "", outcome.fatalErr
		}
		if outcome.transientErr != nil {
			if attempt == p.maxAttempts {
				p.finish(attempt, "transient_exhausted")
				return "", outcome.transientErr
			}
			slog.Warn("job_poll_retry",
				"job_id", jobID,
				"attempt", attempt,
				"max_attempts", p.maxAttempts,
				"error", outcome.transientErr,
			)
			if err := p.sleep(ctx, p.interval); err != nil {
				return "", err
			}
			continue
		}

		job := outcome.job
		if job.Progress != nil {
			reportProgress(progress, *job.Progress)
		}

		switch job.Status {
		case domain.JobCompleted:
			if job.Result == nil || job.Result.ListingID == "" {
				p.finish(attempt, "completed_without_result")
				return "", domain.WrapError(domain.ErrJobFailed, "poll job", errors.New("completed job carries no listing id"))
			}
			p.finish(attempt, "completed")
			return job.Result.ListingID, nil
		case domain.JobFailed:
			msg := job.ErrorMessage
			if msg == "" {
				msg = "job failed without error message"
			}
			p.finish(attempt, "failed")
			return "", domain.WrapError(domain.ErrJobFailed, "poll job", errors.New(msg))
		default:
			// Still in flight on the last attempt means the bound is spent.
			if attempt == p.maxAttempts {
				p.finish(attempt, "timeout")
				return "", p.timeoutError(jobID)
			}
			if err := p.sleep(ctx, p.interval); err != nil {
				return "", err
			}
		}
	}

	p.finish(p.maxAttempts, "timeout")
	return "", p.timeoutError(jobID)
}

func (p *StatusPoller) timeoutError(jobID string) error {
	return fmt.Errorf("job %s: %w after %d attempts", jobID, domain.ErrJobTimeout, p.maxAttempts)
}

// queryOnce runs a single poll cycle. The legacy endpoint is consulted at
// most once, and only when the primary does not know the job id — protocol
// compatibility, not error recovery.
func (p *StatusPoller) queryOnce(ctx context.Context, jobID, actorID string) pollOutcome {
	job, err := p.primary.JobStatus(ctx, jobID, actorID)
	if err != nil && domain.IsKind(err, domain.ErrJobNotFound) && p.legacy != nil {
		job, err = p.legacy.JobStatus(ctx, jobID, actorID)
	}
	if err != nil {
		return classifyPollError(err)
	}
	return pollOutcome{job: job}
}

func classifyPollError(err error) pollOutcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pollOutcome{fatalErr: err}
	}
	// A job id unknown to both generations may simply not be visible yet.
	if domain.IsKind(err, domain.ErrTemporary) || domain.IsKind(err, domain.ErrJobNotFound) {
		return pollOutcome{transientErr: err}
	}
	return pollOutcome{fatalErr: err}
}

func reportProgress(progress chan<- int, value int) {
	if progress == nil {
		return
	}
	select {
	case progress <- value:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
