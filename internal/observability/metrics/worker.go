package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// WorkerMetrics belongs to the analysis event consumer.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal    *prometheus.CounterVec
	eventsInFlight prometheus.Gauge
	eventLag       *prometheus.HistogramVec
	hiddenClauses  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "analysis_events_total",
			Help:      "Consumed analysis events by analysis status, risk level and handling outcome.",
		},
		[]string{"service", "status", "risk_level", "outcome"},
	)
	eventsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "analysis_events_in_flight",
			Help:      "Number of analysis events being handled.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between analysis completion and event handling.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	hiddenClauses := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "hidden_clauses",
			Help:      "Hidden clause candidates per analysed document.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventsTotal, eventsInFlight, eventLag, hiddenClauses)

	return &WorkerMetrics{
		registry:       registry,
		eventsTotal:    eventsTotal,
		eventsInFlight: eventsInFlight,
		eventLag:       eventLag,
		hiddenClauses:  hiddenClauses,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.eventsInFlight.Inc()
}

func (m *WorkerMetrics) FinishEvent(service string, event domain.AnalysisEvent, err error) {
	m.eventsInFlight.Dec()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.eventsTotal.WithLabelValues(service, string(event.Status), string(event.RiskLevel), outcome).Inc()
	m.hiddenClauses.WithLabelValues(service).Observe(float64(event.HiddenClauses))
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
