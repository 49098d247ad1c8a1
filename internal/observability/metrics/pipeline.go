package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// PipelineMetrics counts analysis and chat outcomes.
type PipelineMetrics struct {
	service string

	extractionsTotal *prometheus.CounterVec
	analysesTotal    *prometheus.CounterVec
	chatRepliesTotal *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

func NewPipelineMetrics(registerer prometheus.Registerer, service string) *PipelineMetrics {
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Text extractions by method and outcome.",
		},
		[]string{"service", "method", "status"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "analyses_total",
			Help:      "Completed analyses by status and risk level.",
		},
		[]string{"service", "status", "risk_level"},
	)
	chatRepliesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Chat replies by the responder that produced them.",
		},
		[]string{"service", "source"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(extractionsTotal, analysesTotal, chatRepliesTotal, breakerState)

	return &PipelineMetrics{
		service:          service,
		extractionsTotal: extractionsTotal,
		analysesTotal:    analysesTotal,
		chatRepliesTotal: chatRepliesTotal,
		breakerState:     breakerState,
	}
}

func (m *PipelineMetrics) ObserveExtraction(method domain.ExtractionMethod, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	if method == "" {
		method = domain.ExtractionMethodNone
	}
	m.extractionsTotal.WithLabelValues(m.service, string(method), status).Inc()
}

func (m *PipelineMetrics) ObserveAnalysis(status domain.AnalysisStatus, level domain.RiskLevel) {
	m.analysesTotal.WithLabelValues(m.service, string(status), string(level)).Inc()
}

func (m *PipelineMetrics) ObserveChat(source domain.ChatSource) {
	m.chatRepliesTotal.WithLabelValues(m.service, string(source)).Inc()
}

// SetBreakerState records a breaker transition; state follows gobreaker's
// numbering (closed, half-open, open).
func (m *PipelineMetrics) SetBreakerState(operation string, state int) {
	m.breakerState.WithLabelValues(m.service, operation).Set(float64(state))
}
