package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/core/ports"
)

// ModerationIntakeUseCase turns listing-created events into moderation
// queue entries. Intake is idempotent; a redelivered event is a no-op.
type ModerationIntakeUseCase struct {
	queue ports.ModerationQueue
}

func NewModerationIntakeUseCase(queue ports.ModerationQueue) *ModerationIntakeUseCase {
	return &ModerationIntakeUseCase{queue: queue}
}

func (uc *ModerationIntakeUseCase) Intake(ctx context.Context, event domain.ListingEvent) error {
	if event.ListingID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "moderation intake", fmt.Errorf("event %s carries no listing id", event.ID))
	}
	if err := uc.queue.Enqueue(ctx, event.ListingID, event.ActorID); err != nil {
		return fmt.Errorf("enqueue listing for review: %w", err)
	}
	slog.Info("listing_queued_for_review", "listing_id", event.ListingID, "path", string(event.Path))
	return nil
}
