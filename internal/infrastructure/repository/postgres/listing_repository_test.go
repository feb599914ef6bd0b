package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/okanyild/listingflow/internal/core/domain"
)

func newListingRepoWithMock(t *testing.T) (*ListingRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ListingRepository{db: db}, mock, func() { _ = db.Close() }
}

func listingRows(id, actorID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "actor_id", "title", "description", "price", "category_id", "category_path",
		"location", "image_urls", "attributes", "condition", "urgent", "featured",
		"urgent_premium", "showcase", "status", "expires_at", "created_at", "updated_at",
	}).AddRow(
		id, actorID, "iPhone 13", "lightly used", 450.0, int64(42), []byte(`[10,42]`),
		"Istanbul", []byte(`["https://cdn/1.jpg"]`), []byte(`{"color":["black"]}`), "used", true, false,
		false, false, "pending_approval", nil, now, now,
	)
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, actor_id, title").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDDecodesJSONColumns(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, actor_id, title").
		WithArgs("L1").
		WillReturnRows(listingRows("L1", "u1"))

	record, err := repo.GetByID(context.Background(), "L1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if record.CategoryID == nil || *record.CategoryID != 42 {
		t.Fatalf("expected category id 42, got %+v", record.CategoryID)
	}
	if len(record.CategoryPath) != 2 || record.CategoryPath[1] != 42 {
		t.Fatalf("expected category path [10 42], got %v", record.CategoryPath)
	}
	if len(record.ImageURLs) != 1 || record.ImageURLs[0] != "https://cdn/1.jpg" {
		t.Fatalf("expected image urls decoded, got %v", record.ImageURLs)
	}
	if record.Attributes["color"][0] != "black" {
		t.Fatalf("expected attributes decoded, got %v", record.Attributes)
	}
	if record.Status != domain.StatusPendingApproval {
		t.Fatalf("expected pending_approval, got %s", record.Status)
	}
}

func TestCreateDirectInsertsPendingApproval(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO listings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	draft := domain.ListingDraft{
		Title:    "iPhone 13",
		Price:    450,
		Location: "Istanbul",
		Images: []domain.ImageSource{
			domain.RemoteImage("https://cdn/kept.jpg"),
			domain.BinaryImage("raw.jpg", "image/jpeg", []byte{1}),
		},
	}
	record, err := repo.CreateDirect(context.Background(), draft, "u1")
	if err != nil {
		t.Fatalf("CreateDirect() error = %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected minted listing id")
	}
	if record.Status != domain.StatusPendingApproval {
		t.Fatalf("expected pending_approval, got %s", record.Status)
	}
	if len(record.ImageURLs) != 1 || record.ImageURLs[0] != "https://cdn/kept.jpg" {
		t.Fatalf("direct path keeps only stable urls, got %v", record.ImageURLs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateDirectRejectsForeignListing(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, actor_id, title").
		WithArgs("L1").
		WillReturnRows(listingRows("L1", "someone-else"))

	_, err := repo.UpdateDirect(context.Background(), "L1", domain.ListingPatch{}, "u1")
	if !domain.IsKind(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound for foreign listing, got %v", err)
	}
}

func TestUpdateDirectAppliesPatch(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, actor_id, title").
		WithArgs("L1").
		WillReturnRows(listingRows("L1", "u1"))
	mock.ExpectExec("UPDATE listings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	title := "iPhone 13 Pro"
	price := 500.0
	record, err := repo.UpdateDirect(context.Background(), "L1", domain.ListingPatch{
		Title: &title,
		Price: &price,
	}, "u1")
	if err != nil {
		t.Fatalf("UpdateDirect() error = %v", err)
	}
	if record.Title != title || record.Price != price {
		t.Fatalf("expected patched fields, got %+v", record)
	}
	if record.Location != "Istanbul" {
		t.Fatalf("untouched fields must survive, got %s", record.Location)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateDirectNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newListingRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, actor_id, title").
		WithArgs("L1").
		WillReturnRows(listingRows("L1", "u1"))
	mock.ExpectExec("UPDATE listings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateDirect(context.Background(), "L1", domain.ListingPatch{}, "u1")
	if !domain.IsKind(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}
