package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	intakeTotal    *prometheus.CounterVec
	intakeDuration *prometheus.HistogramVec
	intakeInFlight prometheus.Gauge
	eventLag       *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	intakeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listingflow",
			Subsystem: "worker",
			Name:      "moderation_intake_total",
			Help:      "Listing events taken into the moderation queue by status.",
		},
		[]string{"service", "status"},
	)
	intakeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "worker",
			Name:      "moderation_intake_duration_seconds",
			Help:      "Moderation intake duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	intakeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "listingflow",
			Subsystem: "worker",
			Name:      "moderation_intake_in_flight",
			Help:      "Number of in-flight intake handlers.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listingflow",
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between listing creation and intake start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(intakeTotal, intakeDuration, intakeInFlight, eventLag)

	return &WorkerMetrics{
		registry:       registry,
		intakeTotal:    intakeTotal,
		intakeDuration: intakeDuration,
		intakeInFlight: intakeInFlight,
		eventLag:       eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartIntake() {
	m.intakeInFlight.Inc()
}

func (m *WorkerMetrics) FinishIntake(service string, duration time.Duration, err error) {
	m.intakeInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.intakeTotal.WithLabelValues(service, status).Inc()
	m.intakeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
