// Package uploadapi is the HTTP client for the media upload service. It
// stages the binary payloads of one submission in a single multipart call
// and still exposes the legacy job-status endpoint that predates the job
// service's own one.
package uploadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
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
		requestTimeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type stageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"data"`
}

// Stage uploads every payload of one submission in a single request and
// returns the stored URLs in payload order. A failure here is fatal for
// the submission attempt; no partial image sets are accepted.
func (c *Client) Stage(ctx context.Context, payloads []domain.ImageBinary, actorID string) ([]string, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, payload := range payloads {
		part, err := writer.CreatePart(partHeader(payload))
		if err != nil {
			return nil, fmt.Errorf("build upload part: %w", err)
		}
		if _, err := part.Write(payload.Data); err != nil {
			return nil, fmt.Errorf("write upload part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/listings", &body)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(userIDHeader, actorID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, uploadError(resp)
	}

	var parsed stageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("upload rejected by service")
	}
	if len(parsed.Data.Images) != len(payloads) {
		return nil, fmt.Errorf("upload returned %d urls for %d payloads", len(parsed.Data.Images), len(payloads))
	}

	urls := make([]string, len(parsed.Data.Images))
	for i, img := range parsed.Data.Images {
		if img.URL == "" {
			return nil, fmt.Errorf("upload returned empty url at position %d", i)
		}
		urls[i] = img.URL
	}
	return urls, nil
}

// JobStatus queries the legacy status endpoint kept for jobs created
// before the job service grew its own. Same unified envelope as the
// current generation.
func (c *Client) JobStatus(ctx context.Context, jobID, actorID string) (domain.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/listings/status/"+jobID, nil)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create legacy status request: %w", err)
	}
	req.Header.Set(userIDHeader, actorID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Job{}, domain.WrapError(domain.ErrTemporary, "legacy job status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Job{}, domain.WrapError(domain.ErrJobNotFound, "legacy job status", fmt.Errorf("job %s unknown to legacy endpoint", jobID))
	}
	if resp.StatusCode >= 300 {
		return domain.Job{}, domain.WrapError(domain.ErrTemporary, "legacy job status", fmt.Errorf("status %s", resp.Status))
	}

	var parsed struct {
		Success bool       `json:"success"`
		Data    domain.Job `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Job{}, domain.WrapError(domain.ErrTemporary, "legacy job status", err)
	}

	job := parsed.Data
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

func partHeader(payload domain.ImageBinary) textproto.MIMEHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, payload.Name))
	header.Set("Content-Type", payload.MimeType)
	return header
}

func uploadError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error
		if message == "" {
			message = envelope.Message
		}
	}
	if message == "" {
		return fmt.Errorf("upload status: %s", resp.Status)
	}
	return fmt.Errorf("upload rejected: %s", message)
}
