package ports

import (
	"context"

	"github.com/okanyild/listingflow/internal/core/domain"
)

// AvailabilityProber answers whether the asynchronous job service is
// reachable right now. A single bounded check, no internal retries.
type AvailabilityProber interface {
	Probe(ctx context.Context) bool
}

// ImageStager uploads all binary payloads of one submission in a single
// call and returns stable URLs in the same order.
type ImageStager interface {
	Stage(ctx context.Context, payloads []domain.ImageBinary, actorID string) ([]string, error)
}

// CategoryResolver turns a human-readable category path into the numeric
// id chain. Produced once per submission, never cached by the pipeline.
type CategoryResolver interface {
	ResolvePath(ctx context.Context, path []string) (domain.CategoryResolution, error)
}

// JobSubmitter hands a prepared submission to the async service and
// returns the job handle. Submission is not retried; repeating it could
// create duplicate jobs.
type JobSubmitter interface {
	SubmitCreate(ctx context.Context, sub domain.Submission) (domain.Job, error)
	SubmitUpdate(ctx context.Context, listingID string, patch domain.ListingPatch, imageURLs []string, actorID string) (domain.Job, error)
}

// JobStatusSource reads the current state of a job. Implementations return
// domain.ErrJobNotFound when the endpoint generation does not know the id.
type JobStatusSource interface {
	JobStatus(ctx context.Context, jobID, actorID string) (domain.Job, error)
}

// ListingStore is the system of record: the direct synchronous write path
// and the authoritative read after job completion.
type ListingStore interface {
	CreateDirect(ctx context.Context, draft domain.ListingDraft, actorID string) (*domain.ListingRecord, error)
	UpdateDirect(ctx context.Context, listingID string, patch domain.ListingPatch, actorID string) (*domain.ListingRecord, error)
	GetByID(ctx context.Context, id string) (*domain.ListingRecord, error)
}

// EventPublisher emits listing lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishListingCreated(ctx context.Context, event domain.ListingEvent) error
}

// ModerationQueue records listings awaiting review.
type ModerationQueue interface {
	Enqueue(ctx context.Context, listingID, actorID string) error
}

// PipelineObserver receives submission telemetry. Implementations must be
// safe for concurrent use; a nil observer is allowed everywhere.
type PipelineObserver interface {
	SubmissionFinished(path domain.SubmissionPath, outcome string, durationSeconds float64)
	ImagesStaged(count int, durationSeconds float64)
	PollFinished(attempts int, outcome string)
	DegradedRead()
}
