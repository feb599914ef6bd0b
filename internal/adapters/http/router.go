package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/okanyild/listingflow/internal/config"
	"github.com/okanyild/listingflow/internal/core/domain"
	"github.com/okanyild/listingflow/internal/core/ports"
)

const backpressureWait = 100 * time.Millisecond

type Router struct {
	pipeline ports.ListingPipeline
	reader   ports.ListingReader
}

func NewRouter(pipeline ports.ListingPipeline, reader ports.ListingReader) *Router {
	return &Router{
		pipeline: pipeline,
		reader:   reader,
	}
}

func (rt *Router) Handler(cfg config.Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/listings", rt.createListing)
	mux.HandleFunc("/v1/listings/", rt.listingByID)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, cfg.APIMaxConcurrent, backpressureWait)
	handler = rateLimitMiddleware(handler, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = identityMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	actorID := actorIDFromContext(r.Context())
	if actorID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "header X-User-Id is required"})
		return
	}

	var draft domain.ListingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	requestID := requestIDFromContext(r.Context())
	progress := make(chan int, 8)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for p := range progress {
			slog.Info("submission_progress", "request_id", requestID, "progress", p)
		}
	}()

	record, err := rt.pipeline.CreateListing(r.Context(), draft, actorID, progress)
	close(progress)
	<-drained

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (rt *Router) listingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/listings/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getListing(w, r, id)
	case http.MethodPatch:
		rt.updateListing(w, r, id)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getListing(w http.ResponseWriter, r *http.Request, id string) {
	record, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) updateListing(w http.ResponseWriter, r *http.Request, id string) {
	actorID := actorIDFromContext(r.Context())
	if actorID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "header X-User-Id is required"})
		return
	}

	var patch domain.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := rt.pipeline.UpdateListing(r.Context(), id, patch, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	body := map[string]string{"error": message}
	if errors.Is(err, domain.ErrJobTimeout) {
		body["hint"] = "the submission may still complete server-side"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
