package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okanyild/listingflow/internal/core/domain"
)

type moderationQueueFake struct {
	listingIDs []string
	err        error
}

func (f *moderationQueueFake) Enqueue(_ context.Context, listingID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.listingIDs = append(f.listingIDs, listingID)
	return nil
}

func TestModerationIntakeEnqueues(t *testing.T) {
	queue := &moderationQueueFake{}
	uc := NewModerationIntakeUseCase(queue)

	event := domain.ListingEvent{
		ID:        "e1",
		ListingID: "L1",
		ActorID:   "u1",
		Path:      domain.PathAsync,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.Intake(context.Background(), event); err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if len(queue.listingIDs) != 1 || queue.listingIDs[0] != "L1" {
		t.Fatalf("expected L1 enqueued, got %v", queue.listingIDs)
	}
}

func TestModerationIntakeRejectsEmptyListingID(t *testing.T) {
	uc := NewModerationIntakeUseCase(&moderationQueueFake{})

	err := uc.Intake(context.Background(), domain.ListingEvent{ID: "e1"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestModerationIntakeSurfacesQueueError(t *testing.T) {
	uc := NewModerationIntakeUseCase(&moderationQueueFake{err: errors.New("db down")})

	err := uc.Intake(context.Background(), domain.ListingEvent{ID: "e1", ListingID: "L1"})
	if err == nil {
		t.Fatalf("expected error")
	}
}
