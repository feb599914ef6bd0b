package ports

import (
	"context"

	"github.com/okanyild/listingflow/internal/core/domain"
)

// ListingPipeline is the inbound contract for listing submission.
// Progress values (0-100) observed while polling are delivered on the
// optional progress channel; sends never block, slow consumers miss updates.
type ListingPipeline interface {
	CreateListing(ctx context.Context, draft domain.ListingDraft, actorID string, progress chan<- int) (*domain.ListingRecord, error)
	UpdateListing(ctx context.Context, listingID string, patch domain.ListingPatch, actorID string) (*domain.ListingRecord, error)
}

// ListingReader is the inbound read model for persisted listings.
type ListingReader interface {
	GetByID(ctx context.Context, id string) (*domain.ListingRecord, error)
}

// ModerationIntake is the inbound contract of the moderation worker.
type ModerationIntake interface {
	Intake(ctx context.Context, event domain.ListingEvent) error
}
