package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the runner's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	units             prometheus.Counter
	results           *prometheus.CounterVec
	conversionErrors  prometheus.Counter
	evaluationSeconds *prometheus.HistogramVec
}

// NewMetrics registers the runner collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		units: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataqa_units_total",
			Help: "Total units pulled from the dataset stream",
		}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dataqa_results_total",
			Help: "Total evaluation results by evaluator and outcome",
		}, []string{"evaluator", "outcome"}),
		conversionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataqa_conversion_errors_total",
			Help: "Total raw records that failed conversion",
		}),
		evaluationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataqa_evaluation_seconds",
			Help:    "Evaluation latency in seconds by evaluator",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"evaluator"}),
	}
}

func (m *Metrics) unit() {
	if m == nil {
		return
	}
	m.units.Inc()
}

func (m *Metrics) conversionError() {
	if m == nil {
		return
	}
	m.conversionErrors.Inc()
}

func (m *Metrics) result(evaluatorName, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(evaluatorName, outcome).Inc()
	m.evaluationSeconds.WithLabelValues(evaluatorName).Observe(elapsed.Seconds())
}
