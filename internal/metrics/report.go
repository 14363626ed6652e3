package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// Analysis thresholds: gaps smaller than these are reported as comparable
// rather than called out.
const (
	// latencyNoteThreshold is the mean-latency gap in seconds beyond which
	// the analysis names the faster group.
	latencyNoteThreshold = 0.1

	// accuracyNoteThreshold is the accuracy-rate gap beyond which the
	// analysis names the more accurate group.
	accuracyNoteThreshold = 0.05
)

// Report is the structured form of a rendered comparison: the same data the
// text renderer consumes, serializable as JSON.
type Report struct {
	// Title is the report heading.
	Title string `json:"title"`

	// Verdict is the comparison outcome the report describes.
	Verdict domain.ComparisonVerdict `json:"verdict"`

	// Aggregates are the per-group summaries, in caller-supplied order.
	Aggregates []domain.Aggregate `json:"aggregates"`
}

// BuildReport assembles the structured report for one comparison.
func BuildReport(aggregates []domain.Aggregate, verdict domain.ComparisonVerdict) Report {
	return Report{
		Title:      "Agent Performance Comparison Report",
		Verdict:    verdict,
		Aggregates: aggregates,
	}
}

// RenderReport renders the aggregates and verdict as human-readable text.
// It is a pure function: identical inputs produce byte-identical output.
// Percentages carry one decimal place and durations three, so reports are
// diffable across runs.
func RenderReport(aggregates []domain.Aggregate, verdict domain.ComparisonVerdict) string {
	return BuildReport(aggregates, verdict).Render()
}

// Render produces the text form of the report.
func (r Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)

	total := 0
	for _, agg := range r.Aggregates {
		total += agg.TotalCount
	}

	b.WriteString("## Summary\n\n")
	if r.Verdict.Tie {
		b.WriteString("- Winner: tie\n")
	} else {
		fmt.Fprintf(&b, "- Winner: %s\n", r.Verdict.Winner)
	}
	fmt.Fprintf(&b, "- Scores: %s %.3f vs %s %.3f\n",
		r.Verdict.GroupA, r.Verdict.ScoreA, r.Verdict.GroupB, r.Verdict.ScoreB)
	fmt.Fprintf(&b, "- Profile: %s (tie margin %.3f)\n", r.Verdict.Profile, r.Verdict.Margin)
	fmt.Fprintf(&b, "- Total Interactions: %d\n", total)

	b.WriteString("\n## Detailed Metrics\n")
	for _, agg := range r.Aggregates {
		fmt.Fprintf(&b, "\n### %s\n\n", agg.Group)
		fmt.Fprintf(&b, "- Interactions: %d\n", agg.TotalCount)
		fmt.Fprintf(&b, "- Average Latency: %.3fs\n", agg.AverageLatency)
		fmt.Fprintf(&b, "- Average Response Time: %.3fs\n", agg.AverageResponseTime)
		fmt.Fprintf(&b, "- Accuracy Rate: %.1f%%\n", agg.AccuracyRate*100)
		fmt.Fprintf(&b, "- Handoff Success Rate: %.1f%%\n", agg.HandoffSuccessRate*100)
	}

	aggA, aggB := r.pair()
	fmt.Fprintf(&b, "\n## Key Differences (%s - %s)\n\n", r.Verdict.GroupB, r.Verdict.GroupA)
	fmt.Fprintf(&b, "- Average Latency: %+.3fs\n", aggB.AverageLatency-aggA.AverageLatency)
	fmt.Fprintf(&b, "- Accuracy Rate: %+.1f%%\n", (aggB.AccuracyRate-aggA.AccuracyRate)*100)
	fmt.Fprintf(&b, "- Handoff Success Rate: %+.1f%%\n", (aggB.HandoffSuccessRate-aggA.HandoffSuccessRate)*100)

	b.WriteString("\n## Analysis\n\n")
	for _, line := range r.analysis(aggA, aggB) {
		fmt.Fprintf(&b, "%s\n", line)
	}

	return b.String()
}

// pair resolves the verdict's two groups to their aggregates, falling back
// to empty aggregates for groups missing from the slice.
func (r Report) pair() (domain.Aggregate, domain.Aggregate) {
	aggA := domain.Aggregate{Group: r.Verdict.GroupA}
	aggB := domain.Aggregate{Group: r.Verdict.GroupB}
	for _, agg := range r.Aggregates {
		switch agg.Group {
		case r.Verdict.GroupA:
			aggA = agg
		case r.Verdict.GroupB:
			aggB = agg
		}
	}
	return aggA, aggB
}

func (r Report) analysis(aggA, aggB domain.Aggregate) []string {
	var lines []string

	latencyGap := aggB.AverageLatency - aggA.AverageLatency
	switch {
	case latencyGap < -latencyNoteThreshold:
		lines = append(lines, fmt.Sprintf("%s responds %.3fs faster on average.",
			aggB.Group, math.Abs(latencyGap)))
	case latencyGap > latencyNoteThreshold:
		lines = append(lines, fmt.Sprintf("%s responds %.3fs faster on average.",
			aggA.Group, latencyGap))
	default:
		lines = append(lines, "Latency is comparable between the two groups.")
	}

	accuracyGap := aggB.AccuracyRate - aggA.AccuracyRate
	switch {
	case accuracyGap > accuracyNoteThreshold:
		lines = append(lines, fmt.Sprintf("%s is more accurate by %.1f percentage points.",
			aggB.Group, accuracyGap*100))
	case accuracyGap < -accuracyNoteThreshold:
		lines = append(lines, fmt.Sprintf("%s is more accurate by %.1f percentage points.",
			aggA.Group, math.Abs(accuracyGap)*100))
	default:
		lines = append(lines, "Accuracy is comparable between the two groups.")
	}

	if r.Verdict.Tie {
		lines = append(lines, fmt.Sprintf("Overall: tie under the %s profile.", r.Verdict.Profile))
	} else {
		lines = append(lines, fmt.Sprintf("Overall winner: %s under the %s profile.",
			r.Verdict.Winner, r.Verdict.Profile))
	}
	return lines
}
