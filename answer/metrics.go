package answer

import (
	"errors"

	"github.com/poiesic/juris/guard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the queries counter.
const (
	outcomeAnswered       = "answered"
	outcomeRejected       = "rejected"
	outcomeNotFound       = "not_found"
	outcomeSynthesisError = "synthesis_error"
	outcomeError          = "error"
)

// Metrics holds the pipeline counters.
type Metrics struct {
	queries      *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	warnings     prometheus.Counter
	webFallbacks prometheus.Counter
	chunks       prometheus.Histogram
	latency      prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juris",
			Subsystem: "pipeline",
			Name:      "queries_total",
			Help:      "Questions handled, by outcome",
		}, []string{"outcome"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juris",
			Subsystem: "guard",
			Name:      "rejections_total",
			Help:      "Questions refused admission, by stage",
		}, []string{"reason"}),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "juris",
			Subsystem: "guard",
			Name:      "warnings_total",
			Help:      "Admitted questions that accrued some risk",
		}),
		webFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "juris",
			Subsystem: "pipeline",
			Name:      "web_fallbacks_total",
			Help:      "Times the web search was used to supplement the knowledge base",
		}),
		chunks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "juris",
			Subsystem: "retrieval",
			Name:      "chunks_kept",
			Help:      "Knowledge base passages kept in the fused context",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 40},
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "juris",
			Subsystem: "pipeline",
			Name:      "latency_seconds",
			Help:      "End to end question latency",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, guard.ErrTooShort):
		return "too_short"
	case errors.Is(err, guard.ErrTooLong):
		return "too_long"
	case errors.Is(err, guard.ErrTooManyWords):
		return "too_many_words"
	case errors.Is(err, guard.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, guard.ErrInjectionDetected):
		return "injection"
	case errors.Is(err, guard.ErrOutOfDomain):
		return "out_of_domain"
	default:
		return "other"
	}
}

// The methods below accept a nil receiver so metrics stay optional.

func (m *Metrics) outcome(label string) {
	if m != nil {
		m.queries.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) rejected(err error) {
	if m != nil {
		m.rejections.WithLabelValues(rejectionLabel(err)).Inc()
	}
}

func (m *Metrics) warned() {
	if m != nil {
		m.warnings.Inc()
	}
}

func (m *Metrics) usedWeb() {
	if m != nil {
		m.webFallbacks.Inc()
	}
}

func (m *Metrics) kept(n int) {
	if m != nil {
		m.chunks.Observe(float64(n))
	}
}

func (m *Metrics) observe(seconds float64) {
	if m != nil {
		m.latency.Observe(seconds)
	}
}
