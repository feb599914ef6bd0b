package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okanyild/listingflow/internal/core/domain"
)

// CategoryRepository resolves human-readable category paths against the
// platform's category tree. Resolution walks the tree one segment at a
// time; the whole path must match or the lookup fails.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) ResolvePath(ctx context.Context, path []string) (domain.CategoryResolution, error) {
	if len(path) == 0 {
		return domain.CategoryResolution{}, nil
	}

	chain := make([]int64, 0, len(path))
	var parent *int64
	for _, name := range path {
		id, err := r.childID(ctx, parent, name)
		if err != nil {
			return domain.CategoryResolution{}, err
		}
		chain = append(chain, id)
		parent = &chain[len(chain)-1]
	}

	leaf := chain[len(chain)-1]
	return domain.CategoryResolution{LeafID: &leaf, Path: chain}, nil
}

func (r *CategoryRepository) childID(ctx context.Context, parent *int64, name string) (int64, error) {
	var (
		row *sql.Row
		id  int64
	)
	if parent == nil {
		row = r.db.QueryRowContext(ctx, `
SELECT id FROM categories WHERE parent_id IS NULL AND name = $1
`, name)
	} else {
		row = r.db.QueryRowContext(ctx, `
SELECT id FROM categories WHERE parent_id = $1 AND name = $2
`, *parent, name)
	}

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("category %q not found", name)
		}
		return 0, fmt.Errorf("resolve category %q: %w", name, err)
	}
	return id, nil
}
