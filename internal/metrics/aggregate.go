package metrics

import (
	"github.com/ahrav/go-faceoff/internal/domain"
)

// ComputeAggregate derives the per-group summary from a record set. A zero
// record set produces the defined empty aggregate with all rates and
// averages zero, so division by zero never propagates. Plain floating-point
// division, no rounding; formatting belongs to the report layer.
func ComputeAggregate(group string, records []domain.InteractionRecord) domain.Aggregate {
	agg := domain.Aggregate{Group: group}
	if len(records) == 0 {
		return agg
	}

	var latencySum, responseSum float64
	var correct, handoffs int
	for _, r := range records {
		latencySum += r.LatencySeconds
		responseSum += r.ResponseTimeSeconds
		if r.Correct {
			correct++
		}
		if r.HandoffSucceeded {
			handoffs++
		}
	}

	n := float64(len(records))
	agg.AverageLatency = latencySum / n
	agg.AverageResponseTime = responseSum / n
	agg.AccuracyRate = float64(correct) / n
	agg.HandoffSuccessRate = float64(handoffs) / n
	agg.TotalCount = len(records)
	return agg
}
