package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-faceoff/internal/domain"
)

func TestComputeAggregate(t *testing.T) {
	tests := []struct {
		name            string
		records         []domain.InteractionRecord
		wantLatency     float64
		wantResponse    float64
		wantAccuracy    float64
		wantHandoffRate float64
		wantCount       int
	}{
		{
			name:    "empty set yields all zeros",
			records: nil,
		},
		{
			name: "all correct",
			records: []domain.InteractionRecord{
				record("vanilla", "v1", 0.5, true, true),
				record("vanilla", "v2", 1.5, true, true),
			},
			wantLatency:     1.0,
			wantResponse:    1.0,
			wantAccuracy:    1.0,
			wantHandoffRate: 1.0,
			wantCount:       2,
		},
		{
			name: "all incorrect",
			records: []domain.InteractionRecord{
				record("vanilla", "v1", 0.5, false, true),
				record("vanilla", "v2", 0.5, false, false),
			},
			wantLatency:     0.5,
			wantResponse:    0.5,
			wantAccuracy:    0.0,
			wantHandoffRate: 0.5,
			wantCount:       2,
		},
		{
			name: "mixed outcomes",
			records: []domain.InteractionRecord{
				record("vanilla", "v1", 1.0, true, true),
				record("vanilla", "v2", 2.0, false, true),
				record("vanilla", "v3", 3.0, true, false),
				record("vanilla", "v4", 4.0, false, true),
			},
			wantLatency:     2.5,
			wantResponse:    2.5,
			wantAccuracy:    0.5,
			wantHandoffRate: 0.75,
			wantCount:       4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := ComputeAggregate("vanilla", tt.records)

			assert.Equal(t, "vanilla", agg.Group)
			assert.Equal(t, tt.wantCount, agg.TotalCount, "Count mismatch")
			assert.InDelta(t, tt.wantLatency, agg.AverageLatency, 0.0001, "Average latency mismatch")
			assert.InDelta(t, tt.wantResponse, agg.AverageResponseTime, 0.0001, "Average response time mismatch")
			assert.InDelta(t, tt.wantAccuracy, agg.AccuracyRate, 0.0001, "Accuracy rate mismatch")
			assert.InDelta(t, tt.wantHandoffRate, agg.HandoffSuccessRate, 0.0001, "Handoff rate mismatch")
		})
	}
}

func TestComputeAggregateExactFractions(t *testing.T) {
	// The accuracy rate must be exactly correct/total for every mix.
	for correct := 0; correct <= 7; correct++ {
		t.Run(fmt.Sprintf("%d of 7 correct", correct), func(t *testing.T) {
			records := make([]domain.InteractionRecord, 7)
			for i := range records {
				records[i] = record("g", fmt.Sprintf("s%d", i), 0.1, i < correct, true)
			}

			agg := ComputeAggregate("g", records)

			assert.Equal(t, float64(correct)/7.0, agg.AccuracyRate, "Accuracy must be the exact fraction")
		})
	}
}

func TestComputeAggregateEmptyNeverDivides(t *testing.T) {
	agg := ComputeAggregate("ghost", []domain.InteractionRecord{})

	assert.True(t, agg.IsEmpty())
	assert.Zero(t, agg.TotalCount)
	assert.Zero(t, agg.AverageLatency)
	assert.Zero(t, agg.AverageResponseTime)
	assert.Zero(t, agg.AccuracyRate)
	assert.Zero(t, agg.HandoffSuccessRate)
}
