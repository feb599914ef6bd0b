package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okanyild/listingflow/internal/config"
	"github.com/okanyild/listingflow/internal/core/domain"
)

type pipelineFake struct {
	record   *domain.ListingRecord
	err      error
	progress []int

	gotDraft domain.ListingDraft
	gotPatch domain.ListingPatch
	gotActor string
	gotID    string
}

func (f *pipelineFake) CreateListing(_ context.Context, draft domain.ListingDraft, actorID string, progress chan<- int) (*domain.ListingRecord, error) {
	f.gotDraft = draft
	f.gotActor = actorID
	for _, p := range f.progress {
		if progress != nil {
			progress <- p
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *pipelineFake) UpdateListing(_ context.Context, listingID string, patch domain.ListingPatch, actorID string) (*domain.ListingRecord, error) {
	f.gotID = listingID
	f.gotPatch = patch
	f.gotActor = actorID
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

type readerFake struct {
	record *domain.ListingRecord
	err    error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.ListingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func testConfig() config.Config {
	return config.Config{
		APIRateLimitRPS:   1000,
		APIRateLimitBurst: 1000,
		APIMaxConcurrent:  16,
	}
}

func newTestHandler(pipeline *pipelineFake, reader *readerFake) http.Handler {
	return NewRouter(pipeline, reader).Handler(testConfig())
}

const createBody = `{
	"title": "iPhone 13",
	"price": 450,
	"category_path": ["Elektronik", "Telefon"],
	"images": [
		{"kind": "remote", "url": "https://cdn/existing.jpg"},
		{"kind": "binary", "binary": {"name": "front.jpg", "mime_type": "image/jpeg", "data": "YWJj"}}
	],
	"main_image_index": 0
}`

func TestCreateListingEndpoint(t *testing.T) {
	pipeline := &pipelineFake{
		record:   &domain.ListingRecord{ID: "L1", Status: domain.StatusPendingApproval},
		progress: []int{30, 70},
	}
	handler := newTestHandler(pipeline, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
	req.Header.Set("X-User-Id", "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	var record domain.ListingRecord
	if err := json.NewDecoder(res.Body).Decode(&record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.ID != "L1" {
		t.Fatalf("expected listing L1, got %+v", record)
	}
	if pipeline.gotActor != "u1" {
		t.Fatalf("expected actor u1, got %s", pipeline.gotActor)
	}
	if len(pipeline.gotDraft.Images) != 2 || pipeline.gotDraft.Images[0].Kind != domain.ImageSourceRemote {
		t.Fatalf("expected tagged image union decoded, got %+v", pipeline.gotDraft.Images)
	}
	if pipeline.gotDraft.Images[1].Binary == nil || pipeline.gotDraft.Images[1].Binary.Name != "front.jpg" {
		t.Fatalf("expected binary payload decoded, got %+v", pipeline.gotDraft.Images[1])
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestActorIdentityComesFromMiddleware(t *testing.T) {
	pipeline := &pipelineFake{record: &domain.ListingRecord{ID: "L1"}}
	handler := newTestHandler(pipeline, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
	req.Header.Set("X-User-Id", "  u1  ")
	req.Header.Set("X-Request-Id", "req-7")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if pipeline.gotActor != "u1" {
		t.Fatalf("expected trimmed actor u1, got %q", pipeline.gotActor)
	}
	if res.Header().Get("X-Request-Id") != "req-7" {
		t.Fatalf("expected caller request id echoed, got %q", res.Header().Get("X-Request-Id"))
	}
}

func TestCreateListingRequiresActorHeader(t *testing.T) {
	handler := newTestHandler(&pipelineFake{}, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without actor header, got %d", res.Code)
	}
}

func TestCreateListingRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(&pipelineFake{}, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader("{"))
	req.Header.Set("X-User-Id", "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", res.Code)
	}
}

func TestCreateListingErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "create listing", errors.New("title is required")), http.StatusBadRequest},
		{"job failed", domain.WrapError(domain.ErrJobFailed, "poll job", errors.New("invalid category")), http.StatusUnprocessableEntity},
		{"timeout", domain.WrapError(domain.ErrJobTimeout, "poll job", errors.New("60 attempts")), http.StatusGatewayTimeout},
		{"temporary", domain.WrapError(domain.ErrTemporary, "job status", errors.New("502")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(&pipelineFake{err: tc.err}, &readerFake{})

			req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
			req.Header.Set("X-User-Id", "u1")
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, res.Code)
			}
		})
	}
}

func TestCreateListingHidesInternalErrors(t *testing.T) {
	handler := newTestHandler(&pipelineFake{err: errors.New("pq: connection refused")}, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
	req.Header.Set("X-User-Id", "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "connection refused") {
		t.Fatalf("internal error details must not leak: %s", res.Body.String())
	}
}

func TestTimeoutResponseCarriesHint(t *testing.T) {
	err := domain.WrapError(domain.ErrJobTimeout, "poll job", errors.New("bound exceeded"))
	handler := newTestHandler(&pipelineFake{err: err}, &readerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", strings.NewReader(createBody))
	req.Header.Set("X-User-Id", "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body["hint"], "may still complete") {
		t.Fatalf("expected server-side completion hint, got %v", body)
	}
}

func TestGetListingByID(t *testing.T) {
	handler := newTestHandler(&pipelineFake{}, &readerFake{
		record: &domain.ListingRecord{ID: "L1", Title: "iPhone 13"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/listings/L1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var record domain.ListingRecord
	if err := json.NewDecoder(res.Body).Decode(&record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.ID != "L1" {
		t.Fatalf("expected listing L1, got %+v", record)
	}
}

func TestGetListingByIDNotFound(t *testing.T) {
	notFound := domain.WrapError(domain.ErrListingNotFound, "get listing", errors.New("id=missing"))
	handler := newTestHandler(&pipelineFake{}, &readerFake{err: notFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/listings/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestUpdateListingEndpoint(t *testing.T) {
	pipeline := &pipelineFake{record: &domain.ListingRecord{ID: "L1", Title: "new title"}}
	handler := newTestHandler(pipeline, &readerFake{})

	req := httptest.NewRequest(http.MethodPatch, "/v1/listings/L1", strings.NewReader(`{"title":"new title"}`))
	req.Header.Set("X-User-Id", "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if pipeline.gotID != "L1" {
		t.Fatalf("expected listing id L1, got %s", pipeline.gotID)
	}
	if pipeline.gotPatch.Title == nil || *pipeline.gotPatch.Title != "new title" {
		t.Fatalf("expected patch title, got %+v", pipeline.gotPatch)
	}
}

func TestListingsMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&pipelineFake{}, &readerFake{})

	req := httptest.NewRequest(http.MethodPut, "/v1/listings", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&pipelineFake{}, &readerFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}
