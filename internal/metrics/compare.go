package metrics

import (
	"github.com/ahrav/go-faceoff/internal/domain"
)

// ComparatorConfig configures a Comparator.
type ComparatorConfig struct {
	// Profile is the weight profile scores are computed under.
	Profile domain.WeightProfile

	// RequireRecords makes comparing a zero-count aggregate an error
	// instead of letting empty groups tie by the formula. Callers that
	// treat an empty group as a broken run opt in.
	RequireRecords bool
}

// Comparator scores two groups' aggregates under one weight profile and
// declares a winner. It performs no I/O and holds no state beyond its
// configuration, so a single instance may serve many comparisons.
type Comparator struct {
	config ComparatorConfig
}

// NewComparator creates a comparator after validating the profile.
func NewComparator(config ComparatorConfig) (*Comparator, error) {
	if err := config.Profile.Validate(); err != nil {
		return nil, err
	}
	return &Comparator{config: config}, nil
}

// Profile returns the comparator's weight profile.
func (c *Comparator) Profile() domain.WeightProfile { return c.config.Profile }

// Compare scores the two aggregates under a profile with no quality term.
// Using it with a quality-bearing profile is an InputError.
func (c *Comparator) Compare(a, b domain.Aggregate) (domain.ComparisonVerdict, error) {
	if c.config.Profile.HasQualityTerm() {
		return domain.ComparisonVerdict{}, domain.NewInputError(
			"profile", "profile carries a quality term, use CompareWithQuality")
	}
	return c.compare(a, b, 0, 0)
}

// CompareWithQuality scores the two aggregates under a quality-bearing
// profile, taking one caller-supplied conversation-quality scalar in [0, 1]
// per group. The engine never derives quality itself.
func (c *Comparator) CompareWithQuality(a, b domain.Aggregate, qualityA, qualityB float64) (domain.ComparisonVerdict, error) {
	if !c.config.Profile.HasQualityTerm() {
		return domain.ComparisonVerdict{}, domain.NewInputError(
			"profile", "profile has no quality term, use Compare")
	}
	if qualityA < 0 || qualityA > 1 {
		return domain.ComparisonVerdict{}, domain.NewInputError("quality_a", "must be in [0, 1]")
	}
	if qualityB < 0 || qualityB > 1 {
		return domain.ComparisonVerdict{}, domain.NewInputError("quality_b", "must be in [0, 1]")
	}
	return c.compare(a, b, qualityA, qualityB)
}

func (c *Comparator) compare(a, b domain.Aggregate, qualityA, qualityB float64) (domain.ComparisonVerdict, error) {
	if c.config.RequireRecords {
		if a.IsEmpty() {
			return domain.ComparisonVerdict{}, domain.NewInputError("aggregate_a", "total_count must be positive")
		}
		if b.IsEmpty() {
			return domain.ComparisonVerdict{}, domain.NewInputError("aggregate_b", "total_count must be positive")
		}
	}

	profile := c.config.Profile
	verdict := domain.ComparisonVerdict{
		GroupA:  a.Group,
		GroupB:  b.Group,
		ScoreA:  profile.Score(a, qualityA),
		ScoreB:  profile.Score(b, qualityB),
		Profile: profile.Name,
		Margin:  profile.TieMargin,
	}

	switch {
	case verdict.ScoreB > verdict.ScoreA+profile.TieMargin:
		verdict.Winner = b.Group
	case verdict.ScoreA > verdict.ScoreB+profile.TieMargin:
		verdict.Winner = a.Group
	default:
		verdict.Tie = true
	}
	return verdict, nil
}
