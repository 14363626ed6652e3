// Package middleware provides the observability adapters behind the
// harness ports: a Prometheus-backed metrics collector and an
// OpenTelemetry budget observer.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// namespace prefixes every metric family exported by the harness.
const namespace = "faceoff"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. Interaction, comparison, LLM, and budget metrics get
// dedicated families; anything else lands in the general operation
// families so no emission is silently dropped.
type PrometheusMetrics struct {
	interactionsTotal  *prometheus.CounterVec
	interactionLatency *prometheus.HistogramVec
	comparisonScore    *prometheus.GaugeVec

	llmRequestsTotal *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	llmTokensTotal   *prometheus.CounterVec

	budgetExceededTotal *prometheus.CounterVec
	budgetUsage         *prometheus.GaugeVec

	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all metric families in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		// Comparison run metrics.
		interactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Total fact-check interactions, labeled by agent group and correctness.",
			},
			[]string{"group", "mode", "correct"},
		),
		interactionLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "interaction_latency_seconds",
				Help:      "End-to-end interaction latency per agent group.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"group", "mode"},
		),
		comparisonScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "comparison_score",
				Help:      "Weighted comparison score from the most recent run.",
			},
			[]string{"group", "mode", "profile"},
		),

		// LLM client metrics.
		llmRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total LLM requests, labeled by provider, model, and outcome.",
			},
			[]string{"provider", "model", "status"},
		),
		llmLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_latency_seconds",
				Help:      "LLM request latency per provider and model.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "model", "status"},
		),
		llmTokensTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_total",
				Help:      "Total tokens consumed by LLM requests, split by direction.",
			},
			[]string{"provider", "model", "status", "token_type"},
		),

		// Budget metrics.
		budgetExceededTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_exceeded_total",
				Help:      "Number of times a run crossed a budget ceiling.",
			},
			[]string{"resource"},
		),
		budgetUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_usage",
				Help:      "Current budget consumption and remaining headroom.",
			},
			[]string{"resource"},
		),

		// General families for emissions without a dedicated vector.
		operationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total operations without a dedicated metric family.",
			},
			[]string{"operation", "status"},
		),
		operationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_latency_seconds",
				Help:      "Latency of operations without a dedicated histogram.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current system state values without a dedicated gauge.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in the general histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by routing
// the emission to its counter family.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "interactions_total":
		pm.interactionsTotal.WithLabelValues(
			label(labels, "group"),
			label(labels, "mode"),
			label(labels, "correct"),
		).Add(value)
	case "llm_requests_total":
		pm.llmRequestsTotal.WithLabelValues(
			label(labels, "provider"),
			label(labels, "model"),
			label(labels, "status"),
		).Add(value)
	case "llm_tokens_total":
		pm.llmTokensTotal.WithLabelValues(
			label(labels, "provider"),
			label(labels, "model"),
			label(labels, "status"),
			label(labels, "token_type"),
		).Add(value)
	case "budget_exceeded_total":
		pm.budgetExceededTotal.WithLabelValues(label(labels, "resource")).Add(value)
	default:
		pm.operationsTotal.WithLabelValues(metric, "success").Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by routing
// the emission to its gauge family.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "comparison_score":
		pm.comparisonScore.WithLabelValues(
			label(labels, "group"),
			label(labels, "mode"),
			label(labels, "profile"),
		).Set(value)
	case "budget_tokens_used":
		pm.budgetUsage.WithLabelValues("tokens_used").Set(value)
	case "budget_calls_used":
		pm.budgetUsage.WithLabelValues("calls_used").Set(value)
	case "budget_remaining_tokens":
		pm.budgetUsage.WithLabelValues("tokens_remaining").Set(value)
	case "budget_remaining_calls":
		pm.budgetUsage.WithLabelValues("calls_remaining").Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by routing
// the observation to its histogram family.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "interaction_latency_seconds":
		pm.interactionLatency.WithLabelValues(
			label(labels, "group"),
			label(labels, "mode"),
		).Observe(value)
	case "llm_latency_seconds":
		pm.llmLatency.WithLabelValues(
			label(labels, "provider"),
			label(labels, "model"),
			label(labels, "status"),
		).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

// label reads a label value, substituting "unknown" when the emitter
// omitted the key.
func label(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
