package domain

import "time"

// SubmissionPath records which branch of the pipeline produced a listing.
type SubmissionPath string

const (
	PathAsync  SubmissionPath = "async"
	PathDirect SubmissionPath = "direct"
)

// ListingEvent is published after a listing lands in the system of record,
// regardless of path. The moderation worker consumes it.
type ListingEvent struct {
	ID        string         `json:"id"`
	ListingID string         `json:"listing_id"`
	ActorID   string         `json:"actor_id"`
	Path      SubmissionPath `json:"path"`
	CreatedAt time.Time      `json:"created_at"`
}
