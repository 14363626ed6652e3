package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/ports"
	"github.com/ahrav/go-faceoff/internal/session"
)

var _ session.BudgetObserver = (*OTelBudgetObserver)(nil)

// Usage thresholds, as a fraction of the ceiling, at which span events
// escalate from warning to critical.
const (
	warningThreshold  = 0.8
	criticalThreshold = 0.9
)

// OTelBudgetObserver implements observability for budget activity using
// OpenTelemetry tracing. It annotates the active run span with usage
// events and threshold warnings, and mirrors the budget state into the
// metrics collector. Both group sessions of a run share one budget, so
// the observer keeps no per-interaction state and every hook reads the
// span from its context.
type OTelBudgetObserver struct {
	metrics ports.MetricsCollector
}

// NewOTelBudgetObserver creates a new OpenTelemetry budget observer.
// A nil metrics collector disables the metric mirror and keeps only the
// span events.
func NewOTelBudgetObserver(metrics ports.MetricsCollector) *OTelBudgetObserver {
	return &OTelBudgetObserver{metrics: metrics}
}

// PreCheck implements the session.BudgetObserver interface. It records
// threshold warnings on the active span when usage is approaching a
// ceiling.
func (o *OTelBudgetObserver) PreCheck(ctx context.Context, usage session.Usage, limits session.BudgetLimits) {
	span := trace.SpanFromContext(ctx)
	o.checkThreshold(span, "tokens", usage.Tokens, limits.MaxTokens)
	o.checkThreshold(span, "calls", usage.Calls, limits.MaxCalls)
}

// PostCheck implements the session.BudgetObserver interface. It records
// the charge on the active span, mirrors usage into the metrics
// collector, and marks the span when a ceiling was crossed.
func (o *OTelBudgetObserver) PostCheck(
	ctx context.Context,
	usage session.Usage,
	limits session.BudgetLimits,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)

	if o.metrics != nil {
		labels := map[string]string{"limit": limitLabel(limits)}
		o.metrics.RecordLatency("budget_interaction", elapsed, labels)
	}

	var exceeded *domain.BudgetExceededError
	if errors.As(err, &exceeded) {
		span.AddEvent("budget.exceeded", trace.WithAttributes(
			attribute.String("resource", exceeded.Resource),
			attribute.Int64("limit", exceeded.Limit),
			attribute.Int64("used", exceeded.Used),
		))
		span.SetStatus(codes.Error, "budget limit exceeded")

		if o.metrics != nil {
			o.metrics.RecordCounter("budget_exceeded_total", 1,
				map[string]string{"resource": exceeded.Resource})
		}
		return
	}
	if err != nil {
		// The interaction failed for its own reasons; the runner owns
		// that span status, and the budget state is still healthy.
		o.updateMetrics(usage, limits)
		return
	}

	span.AddEvent("budget.usage_tracked", trace.WithAttributes(
		attribute.Int64("tokens_consumed", usage.Tokens),
		attribute.Int64("calls_made", usage.Calls),
	))
	o.updateMetrics(usage, limits)
}

// checkThreshold emits a span event when usage of a resource crosses the
// warning or critical fraction of its ceiling. Resources without a
// ceiling are skipped.
func (o *OTelBudgetObserver) checkThreshold(span trace.Span, resource string, used, limit int64) {
	if limit <= 0 {
		return
	}

	usagePercentage := float64(used) / float64(limit)
	switch {
	case usagePercentage >= criticalThreshold:
		span.AddEvent("budget.threshold.critical", trace.WithAttributes(
			attribute.String("resource", resource),
			attribute.Float64("usage_percentage", usagePercentage*100),
		))
	case usagePercentage >= warningThreshold:
		span.AddEvent("budget.threshold.warning", trace.WithAttributes(
			attribute.String("resource", resource),
			attribute.Float64("usage_percentage", usagePercentage*100),
		))
	}
}

// updateMetrics sends current budget usage to the metrics collector.
func (o *OTelBudgetObserver) updateMetrics(usage session.Usage, limits session.BudgetLimits) {
	if o.metrics == nil {
		return
	}

	labels := map[string]string{"limit": limitLabel(limits)}
	o.metrics.RecordGauge("budget_tokens_used", float64(usage.Tokens), labels)
	o.metrics.RecordGauge("budget_calls_used", float64(usage.Calls), labels)

	if limits.MaxTokens > 0 {
		remaining := limits.MaxTokens - usage.Tokens
		o.metrics.RecordGauge("budget_remaining_tokens", float64(remaining), labels)
	}
	if limits.MaxCalls > 0 {
		remaining := limits.MaxCalls - usage.Calls
		o.metrics.RecordGauge("budget_remaining_calls", float64(remaining), labels)
	}
}

// limitLabel creates a descriptive label for the active budget ceilings.
func limitLabel(limits session.BudgetLimits) string {
	switch {
	case limits.MaxTokens > 0 && limits.MaxCalls > 0:
		return "tokens_and_calls"
	case limits.MaxTokens > 0:
		return "tokens_only"
	case limits.MaxCalls > 0:
		return "calls_only"
	}
	return "unlimited"
}
