package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okanyild/listingflow/internal/core/domain"
)

// PipelineMetrics observes the submission pipeline: which path ran, how
// it ended, how long staging took and how many poll cycles jobs needed.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	stagedImages       prometheus.Histogram
	stagingDuration    prometheus.Histogram
	pollAttempts       *prometheus.HistogramVec
	degradedReadsTotal prometheus.Counter
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "submissions_total",
			Help:      "Finished submissions by path and outcome.",
		},
		[]string{"service", "path", "outcome"},
	)
	submissionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "submission_duration_seconds",
			Help:      "End-to-end submission duration by path.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "path"},
	)
	stagedImages := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "staged_images",
			Help:      "Binary payloads uploaded per staging call.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stagingDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "staging_duration_seconds",
			Help:      "Duration of the single multipart staging call.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pollAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "poll_attempts",
			Help:      "Status queries needed per job by outcome.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 60},
		},
		[]string{"service", "outcome"},
	)
	degradedReadsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "listingflow",
			Subsystem: "pipeline",
			Name:      "degraded_reads_total",
			Help:      "Completed jobs whose authoritative read failed and returned a stub.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(submissionsTotal, submissionDuration, stagedImages, stagingDuration, pollAttempts, degradedReadsTotal)

	return &PipelineMetrics{
		registry:           registry,
		service:            service,
		submissionsTotal:   submissionsTotal,
		submissionDuration: submissionDuration,
		stagedImages:       stagedImages,
		stagingDuration:    stagingDuration,
		pollAttempts:       pollAttempts,
		degradedReadsTotal: degradedReadsTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) SubmissionFinished(path domain.SubmissionPath, outcome string, durationSeconds float64) {
	m.submissionsTotal.WithLabelValues(m.service, string(path), outcome).Inc()
	m.submissionDuration.WithLabelValues(m.service, string(path)).Observe(durationSeconds)
}

func (m *PipelineMetrics) ImagesStaged(count int, durationSeconds float64) {
	m.stagedImages.Observe(float64(count))
	m.stagingDuration.Observe(durationSeconds)
}

func (m *PipelineMetrics) PollFinished(attempts int, outcome string) {
	m.pollAttempts.WithLabelValues(m.service, outcome).Observe(float64(attempts))
}

func (m *PipelineMetrics) DegradedRead() {
	m.degradedReadsTotal.Inc()
}
