// Package jobapi is the HTTP client for the asynchronous listing job
// service: health probe, job submission and the current-generation status
// endpoint.
package jobapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okanyild/listingflow/internal/core/domain"
)

const userIDHeader = "X-User-Id"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, requestTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Health performs the single reachability check used to pick the
// submission path. Any non-2xx answer or transport error means the async
// path is off the table for this attempt.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", "", nil, nil, "health")
}

type createRequest struct {
	Title           string                    `json:"title"`
	Description     string                    `json:"description"`
	Price           float64                   `json:"price"`
	Category        string                    `json:"category"`
	Location        string                    `json:"location"`
	Images          []string                  `json:"images"`
	Status          string                    `json:"status"`
	Urgency         bool                      `json:"urgency"`
	Condition       string                    `json:"condition"`
	Attributes      map[string][]string       `json:"attributes"`
	CategoryID      *int64                    `json:"category_id"`
	CategoryPath    []int64                   `json:"category_path"`
	ExpiresAt       *time.Time                `json:"expires_at"`
	IsFeatured      bool                      `json:"is_featured"`
	IsUrgentPremium bool                      `json:"is_urgent_premium"`
	IsShowcase      bool                      `json:"is_showcase"`
	Geolocation     *domain.GeoPoint          `json:"geolocation"`
	Metadata        domain.SubmissionMetadata `json:"metadata"`
}

type jobEnvelope struct {
	Success bool       `json:"success"`
	Data    domain.Job `json:"data"`
}

// SubmitCreate posts the prepared submission once and returns the job
// handle. Never retried here: a repeated post could enqueue a second job
// for the same draft.
func (c *Client) SubmitCreate(ctx context.Context, sub domain.Submission) (domain.Job, error) {
	draft := sub.Draft
	body := createRequest{
		Title:           draft.Title,
		Description:     draft.Description,
		Price:           draft.Price,
		Category:        leafName(draft.CategoryPath),
		Location:        draft.Location,
		Images:          sub.ImageURLs,
		Status:          string(domain.StatusPendingApproval),
		Urgency:         draft.Urgent,
		Condition:       draft.Condition,
		Attributes:      draft.Attributes,
		CategoryID:      sub.Category.LeafID,
		CategoryPath:    sub.Category.Path,
		ExpiresAt:       draft.ExpiresAt,
		IsFeatured:      draft.Premium.Featured,
		IsUrgentPremium: draft.Premium.UrgentPremium,
		IsShowcase:      draft.Premium.Showcase,
		Geolocation:     draft.Geolocation,
		Metadata:        sub.Metadata,
	}

	var resp jobEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/listings/create", sub.ActorID, body, &resp, "submit create"); err != nil {
		return domain.Job{}, err
	}
	if resp.Data.ID == "" {
		return domain.Job{}, fmt.Errorf("submit create: response carries no job id")
	}
	return resp.Data, nil
}

type updateRequest struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Price       *float64            `json:"price,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Attributes  map[string][]string `json:"attributes,omitempty"`
	Condition   *string             `json:"condition,omitempty"`
	Urgency     *bool               `json:"urgency,omitempty"`
	Images      []string            `json:"images,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

func (c *Client) SubmitUpdate(ctx context.Context, listingID string, patch domain.ListingPatch, imageURLs []string, actorID string) (domain.Job, error) {
	body := updateRequest{
		Title:       patch.Title,
		Description: patch.Description,
		Price:       patch.Price,
		Location:    patch.Location,
		Attributes:  patch.Attributes,
		Condition:   patch.Condition,
		Urgency:     patch.Urgent,
		Images:      imageURLs,
		ExpiresAt:   patch.ExpiresAt,
	}

	var resp jobEnvelope
	path := fmt.Sprintf("/listings/%s/update", listingID)
	if err := c.doJSON(ctx, http.MethodPost, path, actorID, body, &resp, "submit update"); err != nil {
		return domain.Job{}, err
	}
	if resp.Data.ID == "" {
		return domain.Job{}, fmt.Errorf("submit update: response carries no job id")
	}
	return resp.Data, nil
}

// JobStatus queries the current-generation status endpoint. A 404 comes
// back as domain.ErrJobNotFound so the poller can fall through to the
// legacy generation; transport and decode failures come back as
// domain.ErrTemporary.
func (c *Client) JobStatus(ctx context.Context, jobID, actorID string) (domain.Job, error) {
	var resp jobEnvelope
	path := fmt.Sprintf("/listings/jobs/%s", jobID)
	err := c.doJSON(ctx, http.MethodGet, path, actorID, nil, &resp, "job status")
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return domain.Job{}, domain.WrapError(domain.ErrJobNotFound, "job status", err)
		}
		return domain.Job{}, wrapTemporaryIfNeeded("job status", err)
	}

	job := resp.Data
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

func leafName(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
