package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const moderationStatePending = "pending_review"

// ModerationRepository records listings awaiting review. Enqueue is
// idempotent per listing so redelivered events do not pile up entries.
type ModerationRepository struct {
	db *sql.DB
}

func NewModerationRepository(db *sql.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) Enqueue(ctx context.Context, listingID, actorID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO moderation_queue (id, listing_id, actor_id, state, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (listing_id) DO NOTHING
`, uuid.NewString(), listingID, actorID, moderationStatePending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("enqueue moderation: %w", err)
	}
	return nil
}
