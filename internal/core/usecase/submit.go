package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/core/ports"
)

const submissionSource = "api"

// jobPoller is the seam between the orchestrator and the poll state
// machine.
type jobPoller interface {
	Poll(ctx context.Context, jobID, actorID string, progress chan<- int) (string, error)
}

// SubmitListingUseCase orchestrates one submission end to end: probe the
// async service, stage images, resolve the category chain, submit the
// creation job, poll it to a terminal state and fetch the persisted record.
// When the async service is unreachable the same draft goes through the
// direct synchronous write instead; callers cannot tell the paths apart
// from the return value.
type SubmitListingUseCase struct {
	prober     ports.AvailabilityProber
	stager     ports.ImageStager
	categories ports.CategoryResolver
	submitter  ports.JobSubmitter
	poller     jobPoller
	store      ports.ListingStore
	events     ports.EventPublisher
	observer   ports.PipelineObserver
}

func NewSubmitListingUseCase(
	prober ports.AvailabilityProber,
	stager ports.ImageStager,
	categories ports.CategoryResolver,
	submitter ports.JobSubmitter,
	poller jobPoller,
	store ports.ListingStore,
	events ports.EventPublisher,
	observer ports.PipelineObserver,
) *SubmitListingUseCase {
	return &SubmitListingUseCase{
		prober:     prober,
		stager:     stager,
		categories: categories,
		submitter:  submitter,
		poller:     poller,
		store:      store,
		events:     events,
		observer:   observer,
	}
}

func (uc *SubmitListingUseCase) CreateListing(
	ctx context.Context,
	draft domain.ListingDraft,
	actorID string,
	progress chan<- int,
) (*domain.ListingRecord, error) {
	start := time.Now()
	if err := validateDraft(draft, actorID); err != nil {
		return nil, err
	}

	if !uc.prober.Probe(ctx) {
		record, err := uc.store.CreateDirect(ctx, draft, actorID)
		uc.finishSubmission(domain.PathDirect, start, err)
		if err != nil {
			return nil, fmt.Errorf("direct create: %w", err)
		}
		uc.announceCreated(ctx, record.ID, actorID, domain.PathDirect)
		return record, nil
	}

	imageURLs, err := uc.stageImages(ctx, draft.Images, actorID)
	if err != nil {
		uc.finishSubmission(domain.PathAsync, start, err)
		return nil, err
	}

	submission := domain.Submission{
		Draft:     draft,
		ImageURLs: imageURLs,
		Category:  uc.resolveCategory(ctx, draft.CategoryPath),
		ActorID:   actorID,
		Metadata: domain.SubmissionMetadata{
			Source:         submissionSource,
			DurationMS:     time.Since(start).Milliseconds(),
			MainImageIndex: draft.MainImageIndex,
		},
	}

	job, err := uc.submitter.SubmitCreate(ctx, submission)
	if err != nil {
		uc.finishSubmission(domain.PathAsync, start, err)
		return nil, fmt.Errorf("submit creation job: %w", err)
	}

	listingID, err := uc.poller.Poll(ctx, job.ID, actorID, progress)
	if err != nil {
		uc.finishSubmission(domain.PathAsync, start, err)
		return nil, err
	}

	record := uc.resolveRecord(ctx, listingID)
	uc.finishSubmission(domain.PathAsync, start, nil)
	uc.announceCreated(ctx, record.ID, actorID, domain.PathAsync)
	return record, nil
}

func (uc *SubmitListingUseCase) UpdateListing(
	ctx context.Context,
	listingID string,
	patch domain.ListingPatch,
	actorID string,
) (*domain.ListingRecord, error) {
	if strings.TrimSpace(listingID) == "" || strings.TrimSpace(actorID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update listing", errors.New("listing id and actor id are required"))
	}

	if !uc.prober.Probe(ctx) {
		record, err := uc.store.UpdateDirect(ctx, listingID, patch, actorID)
		if err != nil {
			return nil, fmt.Errorf("direct update: %w", err)
		}
		return record, nil
	}

	var imageURLs []string
	if len(patch.Images) > 0 {
		staged, err := uc.stageImages(ctx, patch.Images, actorID)
		if err != nil {
			return nil, err
		}
		imageURLs = staged
	}

	job, err := uc.submitter.SubmitUpdate(ctx, listingID, patch, imageURLs, actorID)
	if err != nil {
		return nil, fmt.Errorf("submit update job: %w", err)
	}

	updatedID, err := uc.poller.Poll(ctx, job.ID, actorID, nil)
	if err != nil {
		return nil, err
	}
	return uc.resolveRecord(ctx, updatedID), nil
}

// stageImages normalizes the image set and uploads every binary payload in
// a single call. Already-uploaded URLs pass through in place, so the
// returned list keeps the input order.
func (uc *SubmitListingUseCase) stageImages(ctx context.Context, sources []domain.ImageSource, actorID string) ([]string, error) {
	normalized := NormalizeImages(sources)
	if len(normalized) == 0 {
		return nil, nil
	}

	payloads := make([]domain.ImageBinary, 0, len(normalized))
	for _, img := range normalized {
		if img.Payload != nil {
			payloads = append(payloads, *img.Payload)
		}
	}

	var staged []string
	if len(payloads) > 0 {
		start := time.Now()
		urls, err := uc.stager.Stage(ctx, payloads, actorID)
		if err != nil {
			return nil, fmt.Errorf("stage images: %w", err)
		}
		if len(urls) != len(payloads) {
			return nil, domain.WrapError(
				domain.ErrInvalidInput,
				"stage images",
				fmt.Errorf("url/payload count mismatch: %d/%d", len(urls), len(payloads)),
			)
		}
		if uc.observer != nil {
			uc.observer.ImagesStaged(len(payloads), time.Since(start).Seconds())
		}
		staged = urls
	}

	out := make([]string, 0, len(normalized))
	next := 0
	for _, img := range normalized {
		if img.Payload != nil {
			out = append(out, staged[next])
			next++
			continue
		}
		out = append(out, img.URL)
	}
	return out, nil
}

// resolveCategory degrades to an empty resolution when the lookup fails:
// the backend stores null category ids and moderation fixes them up later.
func (uc *SubmitListingUseCase) resolveCategory(ctx context.Context, path []string) domain.CategoryResolution {
	if len(path) == 0 {
		return domain.CategoryResolution{}
	}
	resolution, err := uc.categories.ResolvePath(ctx, path)
	if err != nil {
		slog.Warn("category_resolution_failed", "path", strings.Join(path, ">"), "error", err)
		return domain.CategoryResolution{}
	}
	return resolution
}

// resolveRecord fetches the authoritative record once the job reported
// completion. A read failure here is a visibility problem, not a
// correctness problem: the caller gets a minimal stub instead of an error.
func (uc *SubmitListingUseCase) resolveRecord(ctx context.Context, listingID string) *domain.ListingRecord {
	record, err := uc.store.GetByID(ctx, listingID)
	if err != nil || record == nil {
		slog.Warn("listing_read_degraded", "listing_id", listingID, "error", err)
		if uc.observer != nil {
			uc.observer.DegradedRead()
		}
		return domain.StubRecord(listingID)
	}
	return record
}

func (uc *SubmitListingUseCase) announceCreated(ctx context.Context, listingID, actorID string, path domain.SubmissionPath) {
	if uc.events == nil {
		return
	}
	event := domain.ListingEvent{
		ID:        uuid.NewString(),
		ListingID: listingID,
		ActorID:   actorID,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.events.PublishListingCreated(ctx, event); err != nil {
		slog.Warn("listing_event_publish_failed", "listing_id", listingID, "error", err)
	}
}

func (uc *SubmitListingUseCase) finishSubmission(path domain.SubmissionPath, start time.Time, err error) {
	if uc.observer == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case domain.IsKind(err, domain.ErrJobTimeout):
		outcome = "timeout"
	case domain.IsKind(err, domain.ErrJobFailed):
		outcome = "job_failed"
	default:
		outcome = "error"
	}
	uc.observer.SubmissionFinished(path, outcome, time.Since(start).Seconds())
}

func validateDraft(draft domain.ListingDraft, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create listing", errors.New("actor id is required"))
	}
	if strings.TrimSpace(draft.Title) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create listing", errors.New("title is required"))
	}
	if draft.Price < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "create listing", errors.New("price must not be negative"))
	}
	if draft.MainImageIndex < 0 || (len(draft.Images) > 0 && draft.MainImageIndex >= len(draft.Images)) {
		return domain.WrapError(domain.ErrInvalidInput, "create listing", errors.New("main image index out of range"))
	}
	return nil
}
