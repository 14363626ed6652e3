package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-faceoff/internal/domain"
)

func demoInputs(t *testing.T) ([]domain.Aggregate, domain.ComparisonVerdict) {
	t.Helper()

	vanilla := domain.Aggregate{
		Group:               "vanilla",
		AverageLatency:      0.804,
		AverageResponseTime: 0.804,
		AccuracyRate:        0.8,
		HandoffSuccessRate:  0.9,
		TotalCount:          15,
	}
	baml := domain.Aggregate{
		Group:               "baml",
		AverageLatency:      0.403,
		AverageResponseTime: 0.403,
		AccuracyRate:        0.9333333,
		HandoffSuccessRate:  1.0,
		TotalCount:          15,
	}

	comparator, err := NewComparator(ComparatorConfig{Profile: domain.AccuracyWeightedProfile()})
	require.NoError(t, err)
	verdict, err := comparator.Compare(vanilla, baml)
	require.NoError(t, err)

	return []domain.Aggregate{vanilla, baml}, verdict
}

func TestRenderReportDeterministic(t *testing.T) {
	aggregates, verdict := demoInputs(t)

	first := RenderReport(aggregates, verdict)
	second := RenderReport(aggregates, verdict)

	assert.Equal(t, first, second, "Identical inputs must render byte-identical text")
}

func TestRenderReportLayout(t *testing.T) {
	aggregates, verdict := demoInputs(t)

	text := RenderReport(aggregates, verdict)

	assert.True(t, strings.HasPrefix(text, "# Agent Performance Comparison Report\n"), "Title line mismatch")
	assert.Contains(t, text, "## Summary")
	assert.Contains(t, text, "- Winner: baml")
	assert.Contains(t, text, "- Total Interactions: 30")
	assert.Contains(t, text, "### vanilla")
	assert.Contains(t, text, "### baml")
	assert.Contains(t, text, "## Key Differences (baml - vanilla)")
	assert.Contains(t, text, "## Analysis")
}

func TestRenderReportFormatting(t *testing.T) {
	aggregates, verdict := demoInputs(t)

	text := RenderReport(aggregates, verdict)

	// Durations carry three decimals, percentages one.
	assert.Contains(t, text, "- Average Latency: 0.804s")
	assert.Contains(t, text, "- Average Latency: 0.403s")
	assert.Contains(t, text, "- Accuracy Rate: 80.0%")
	assert.Contains(t, text, "- Accuracy Rate: 93.3%")
	assert.Contains(t, text, "- Handoff Success Rate: 90.0%")
	assert.Contains(t, text, "- Handoff Success Rate: 100.0%")

	// Key differences carry explicit signs.
	assert.Contains(t, text, "- Average Latency: -0.401s")
	assert.Contains(t, text, "- Accuracy Rate: +13.3%")
	assert.Contains(t, text, "- Handoff Success Rate: +10.0%")
}

func TestRenderReportAnalysisThresholds(t *testing.T) {
	t.Run("large gaps are called out", func(t *testing.T) {
		aggregates, verdict := demoInputs(t)

		text := RenderReport(aggregates, verdict)

		assert.Contains(t, text, "baml responds 0.401s faster on average.")
		assert.Contains(t, text, "baml is more accurate by 13.3 percentage points.")
		assert.Contains(t, text, "Overall winner: baml under the accuracy_weighted profile.")
	})

	t.Run("small gaps read as comparable", func(t *testing.T) {
		agg := domain.Aggregate{Group: "vanilla", AverageLatency: 0.5, AverageResponseTime: 0.5, AccuracyRate: 0.8, HandoffSuccessRate: 0.9, TotalCount: 10}
		same := agg
		same.Group = "baml"
		comparator, err := NewComparator(ComparatorConfig{Profile: domain.AccuracyWeightedProfile()})
		require.NoError(t, err)
		verdict, err := comparator.Compare(agg, same)
		require.NoError(t, err)

		text := RenderReport([]domain.Aggregate{agg, same}, verdict)

		assert.Contains(t, text, "Latency is comparable between the two groups.")
		assert.Contains(t, text, "Accuracy is comparable between the two groups.")
		assert.Contains(t, text, "Overall: tie under the accuracy_weighted profile.")
		assert.Contains(t, text, "- Winner: tie")
	})
}

func TestRenderReportHandlesMissingAggregates(t *testing.T) {
	// A verdict over groups absent from the aggregate slice falls back to
	// empty aggregates rather than panicking.
	verdict := domain.ComparisonVerdict{
		GroupA: "vanilla", GroupB: "baml",
		Profile: "accuracy_weighted", Tie: true,
	}

	text := RenderReport(nil, verdict)

	assert.Contains(t, text, "- Total Interactions: 0")
	assert.Contains(t, text, "- Winner: tie")
}

func TestBuildReportStructure(t *testing.T) {
	aggregates, verdict := demoInputs(t)

	report := BuildReport(aggregates, verdict)

	assert.Equal(t, "Agent Performance Comparison Report", report.Title)
	assert.Equal(t, verdict, report.Verdict)
	assert.Len(t, report.Aggregates, 2)
	assert.Equal(t, report.Render(), RenderReport(aggregates, verdict), "Both entry points render identically")
}
