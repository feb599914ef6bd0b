package jobapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okanyild/listingflow/internal/core/domain"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "job service status error"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("job service %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("job service %s: %s", e.Operation, strings.TrimSpace(e.Message))
}

func (c *Client) doJSON(ctx context.Context, method, path, actorID string, payload, out any, operation string) error {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actorID != "" {
		req.Header.Set(userIDHeader, actorID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTemporaryIfNeeded(operation, fmt.Errorf("job service %s request: %w", operation, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return newStatusError(operation, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{operation: operation, err: err}
	}
	return nil
}

// decodeError marks a 2xx response whose body could not be parsed. For
// status polling this is a transient backend hiccup like any other, not
// a terminal answer.
type decodeError struct {
	operation string
	err       error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.operation, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

// newStatusError keeps the server-provided message when the error body is
// parseable, so callers can surface it verbatim.
func newStatusError(operation string, resp *http.Response) error {
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
		message = strings.TrimSpace(string(body))
	}

	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    message,
	}
}

func statusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyJobServiceError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
