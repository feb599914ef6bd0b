package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/core/ports"
)

// ListingRepository is the system of record. It backs both the direct
// synchronous write path (when the async service is down) and the
// authoritative read after a completed job.
type ListingRepository struct {
	db         *sql.DB
	categories ports.CategoryResolver
}

func NewListingRepository(db *sql.DB, categories ports.CategoryResolver) *ListingRepository {
	return &ListingRepository{db: db, categories: categories}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS listings (
	id TEXT PRIMARY KEY,
	actor_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	category_id BIGINT,
	category_path JSONB,
	location TEXT NOT NULL DEFAULT '',
	image_urls JSONB NOT NULL DEFAULT '[]'::jsonb,
	attributes JSONB,
	condition TEXT NOT NULL DEFAULT '',
	urgent BOOLEAN NOT NULL DEFAULT FALSE,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	urgent_premium BOOLEAN NOT NULL DEFAULT FALSE,
	showcase BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_actor ON listings(actor_id);
CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);

CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	parent_id BIGINT REFERENCES categories(id),
	name TEXT NOT NULL,
	UNIQUE (parent_id, name)
);

CREATE TABLE IF NOT EXISTS moderation_queue (
	id TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL UNIQUE,
	actor_id TEXT NOT NULL,
	state TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const listingColumns = `id, actor_id, title, description, price, category_id, category_path, location,
image_urls, attributes, condition, urgent, featured, urgent_premium, showcase, status,
expires_at, created_at, updated_at`

// CreateDirect writes the draft straight into the listings table. The
// record it returns has the same shape as the async path's result, so
// callers cannot tell which path ran.
func (r *ListingRepository) CreateDirect(ctx context.Context, draft domain.ListingDraft, actorID string) (*domain.ListingRecord, error) {
	now := time.Now().UTC()
	record := &domain.ListingRecord{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Location:    draft.Location,
		ImageURLs:   remoteURLs(draft.Images),
		Attributes:  draft.Attributes,
		Condition:   draft.Condition,
		Urgent:      draft.Urgent,
		Premium:     draft.Premium,
		Status:      domain.StatusPendingApproval,
		ExpiresAt:   draft.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if r.categories != nil && len(draft.CategoryPath) > 0 {
		if resolution, err := r.categories.ResolvePath(ctx, draft.CategoryPath); err == nil {
			record.CategoryID = resolution.LeafID
			record.CategoryPath = resolution.Path
		}
	}

	pathJSON, err := marshalNullable(record.CategoryPath)
	if err != nil {
		return nil, fmt.Errorf("encode category path: %w", err)
	}
	imagesJSON, err := json.Marshal(record.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("encode image urls: %w", err)
	}
	attrsJSON, err := marshalNullable(record.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO listings (`+listingColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`, record.ID, record.ActorID, record.Title, record.Description, record.Price,
		record.CategoryID, pathJSON, record.Location, imagesJSON, attrsJSON,
		record.Condition, record.Urgent, record.Premium.Featured, record.Premium.UrgentPremium,
		record.Premium.Showcase, string(record.Status), record.ExpiresAt, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return record, nil
}

// UpdateDirect applies a patch through the primary-database path. The
// listing must belong to the acting user.
func (r *ListingRepository) UpdateDirect(ctx context.Context, listingID string, patch domain.ListingPatch, actorID string) (*domain.ListingRecord, error) {
	record, err := r.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if record.ActorID != actorID {
		return nil, domain.WrapError(domain.ErrListingNotFound, "update listing", fmt.Errorf("listing %s not owned by actor", listingID))
	}

	applyPatch(record, patch)
	record.UpdatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(record.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("encode image urls: %w", err)
	}
	attrsJSON, err := marshalNullable(record.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE listings
SET title = $3, description = $4, price = $5, location = $6, image_urls = $7,
    attributes = $8, condition = $9, urgent = $10, expires_at = $11, updated_at = $12
WHERE id = $1 AND actor_id = $2
`, listingID, actorID, record.Title, record.Description, record.Price, record.Location,
		imagesJSON, attrsJSON, record.Condition, record.Urgent, record.ExpiresAt, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update listing rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.WrapError(domain.ErrListingNotFound, "update listing", fmt.Errorf("id=%s", listingID))
	}
	return record, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.ListingRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = $1
`, id)

	record, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrListingNotFound, "get listing", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return record, nil
}

func scanListing(row *sql.Row) (*domain.ListingRecord, error) {
	var (
		record     domain.ListingRecord
		status     string
		pathJSON   []byte
		imagesJSON []byte
		attrsJSON  []byte
	)
	err := row.Scan(
		&record.ID, &record.ActorID, &record.Title, &record.Description, &record.Price,
		&record.CategoryID, &pathJSON, &record.Location, &imagesJSON, &attrsJSON,
		&record.Condition, &record.Urgent, &record.Premium.Featured, &record.Premium.UrgentPremium,
		&record.Premium.Showcase, &status, &record.ExpiresAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Status = domain.ListingStatus(status)
	if len(pathJSON) > 0 {
		if err := json.Unmarshal(pathJSON, &record.CategoryPath); err != nil {
			return nil, fmt.Errorf("decode category path: %w", err)
		}
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &record.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode image urls: %w", err)
		}
	}
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &record.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return &record, nil
}

func applyPatch(record *domain.ListingRecord, patch domain.ListingPatch) {
	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Description != nil {
		record.Description = *patch.Description
	}
	if patch.Price != nil {
		record.Price = *patch.Price
	}
	if patch.Location != nil {
		record.Location = *patch.Location
	}
	if patch.Attributes != nil {
		record.Attributes = patch.Attributes
	}
	if patch.Condition != nil {
		record.Condition = *patch.Condition
	}
	if patch.Urgent != nil {
		record.Urgent = *patch.Urgent
	}
	if len(patch.Images) > 0 {
		record.ImageURLs = remoteURLs(patch.Images)
	}
	if patch.ExpiresAt != nil {
		record.ExpiresAt = patch.ExpiresAt
	}
}

// remoteURLs keeps whatever image references are already stable URLs.
// Binary payload handling on the direct path belongs to the media
// service's own intake, not to this repository.
func remoteURLs(sources []domain.ImageSource) []string {
	urls := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.Kind == domain.ImageSourceRemote && src.URL != "" {
			urls = append(urls, src.URL)
		}
	}
	return urls
}

func marshalNullable(v any) ([]byte, error) {
	switch value := v.(type) {
	case []int64:
		if value == nil {
			return nil, nil
		}
	case map[string][]string:
		if value == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
