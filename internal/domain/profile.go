package domain

import (
	"math"
)

// SpeedCap is the response-time ceiling in seconds for the speed term of a
// comparison score. Groups averaging slower than the cap score zero on
// speed, never negative.
const SpeedCap = 10.0

// weightSumTolerance absorbs float error when checking that profile weights
// sum to 1.
const weightSumTolerance = 1e-9

// WeightProfile defines the linear weighting used to score a group's
// aggregate during comparison. The weights must form a convex combination:
// each in [0, 1] and summing to 1.
type WeightProfile struct {
	// Name identifies the profile in verdicts and reports.
	Name string `json:"name"`

	// AccuracyWeight scales the group's accuracy rate.
	AccuracyWeight float64 `json:"accuracy_weight"`

	// SpeedWeight scales the clamped speed factor derived from the group's
	// average response time.
	SpeedWeight float64 `json:"speed_weight"`

	// HandoffWeight scales the group's handoff success rate.
	HandoffWeight float64 `json:"handoff_weight"`

	// QualityWeight scales a caller-supplied conversation-quality scalar in
	// [0, 1]. Zero means the profile takes no quality input; the engine
	// never derives quality itself.
	QualityWeight float64 `json:"quality_weight,omitempty"`

	// TieMargin is the minimum score advantage required for a decisive
	// winner. Score differences at or below the margin are ties.
	TieMargin float64 `json:"tie_margin"`
}

// AccuracyWeightedProfile is the profile for plain fact-check comparisons:
// accuracy dominates, speed and handoff follow, there is no quality term,
// and only exactly equal scores tie.
func AccuracyWeightedProfile() WeightProfile {
	return WeightProfile{
		Name:           "accuracy_weighted",
		AccuracyWeight: 0.5,
		SpeedWeight:    0.3,
		HandoffWeight:  0.2,
		TieMargin:      0,
	}
}

// InteractionQualityProfile is the profile for voice comparisons: accuracy
// and the caller-supplied conversation quality share the lead, and small
// score differences count as ties.
func InteractionQualityProfile() WeightProfile {
	return WeightProfile{
		Name:           "interaction_quality",
		AccuracyWeight: 0.3,
		QualityWeight:  0.3,
		HandoffWeight:  0.2,
		SpeedWeight:    0.2,
		TieMargin:      0.05,
	}
}

// HasQualityTerm reports whether the profile expects a caller-supplied
// conversation-quality scalar.
func (p WeightProfile) HasQualityTerm() bool { return p.QualityWeight > 0 }

// Validate checks that the weights form a convex combination and the tie
// margin is non-negative.
func (p WeightProfile) Validate() error {
	if p.Name == "" {
		return NewInputError("profile.name", "must not be empty")
	}
	weights := []struct {
		field string
		value float64
	}{
		{"profile.accuracy_weight", p.AccuracyWeight},
		{"profile.speed_weight", p.SpeedWeight},
		{"profile.handoff_weight", p.HandoffWeight},
		{"profile.quality_weight", p.QualityWeight},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return NewInputError(w.field, "must be in [0, 1]")
		}
	}
	sum := p.AccuracyWeight + p.SpeedWeight + p.HandoffWeight + p.QualityWeight
	if math.Abs(sum-1.0) > weightSumTolerance {
		return NewInputError("profile.weights", "must sum to 1")
	}
	if p.TieMargin < 0 {
		return NewInputError("profile.tie_margin", "must not be negative")
	}
	return nil
}

// SpeedFactor converts an average response time into the [0, 1] speed term:
// 1 at zero seconds, falling linearly to 0 at SpeedCap seconds and beyond.
func SpeedFactor(averageResponseTime float64) float64 {
	return 1 - math.Min(averageResponseTime, SpeedCap)/SpeedCap
}

// Score computes the weighted score for one aggregate. The quality scalar
// participates only when the profile carries a quality term.
func (p WeightProfile) Score(agg Aggregate, quality float64) float64 {
	score := agg.AccuracyRate*p.AccuracyWeight +
		SpeedFactor(agg.AverageResponseTime)*p.SpeedWeight +
		agg.HandoffSuccessRate*p.HandoffWeight
	if p.HasQualityTerm() {
		score += quality * p.QualityWeight
	}
	return score
}
