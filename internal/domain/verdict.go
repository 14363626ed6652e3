package domain

// ComparisonVerdict is the outcome of scoring two groups' aggregates under
// one weight profile. It is a ternary decision: group A wins, group B wins,
// or the scores are within the margin and the comparison ties.
type ComparisonVerdict struct {
	// GroupA is the first compared group, in caller-supplied order.
	GroupA string `json:"group_a"`

	// GroupB is the second compared group.
	GroupB string `json:"group_b"`

	// ScoreA is the weighted score computed for group A.
	ScoreA float64 `json:"score_a"`

	// ScoreB is the weighted score computed for group B.
	ScoreB float64 `json:"score_b"`

	// Profile names the weight profile that produced the scores.
	Profile string `json:"profile"`

	// Margin is the tie margin the verdict was decided under.
	Margin float64 `json:"margin"`

	// Winner is the winning group's label, empty on a tie.
	Winner string `json:"winner,omitempty"`

	// Tie reports that neither group led by more than the margin.
	Tie bool `json:"tie"`
}
