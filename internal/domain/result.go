package domain

import (
	"strings"
)

// Classification is a fact-check outcome label. Uncertain is a valid
// success classification, never a failure mode.
type Classification string

// The three classifications an agent can produce.
const (
	ClassificationTrue      Classification = "true"
	ClassificationFalse     Classification = "false"
	ClassificationUncertain Classification = "uncertain"
)

// IsValid reports whether c is one of the three known classifications.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationTrue, ClassificationFalse, ClassificationUncertain:
		return true
	}
	return false
}

// String returns the lowercase label.
func (c Classification) String() string { return string(c) }

// ParseClassification normalizes a free-form label into a Classification.
// Matching is case-insensitive and accepts "unclear" and "unknown" as
// synonyms for uncertain. The boolean reports whether the label was
// recognized.
func ParseClassification(s string) (Classification, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return ClassificationTrue, true
	case "false":
		return ClassificationFalse, true
	case "uncertain", "unclear", "unknown":
		return ClassificationUncertain, true
	}
	return "", false
}

// FactCheckResult is the outcome of one fact-check call: a CheckSuccess
// carrying a classification, or a CheckFailure carrying the terminal error.
// The interface is sealed so callers can switch over the two variants
// exhaustively. Provider and parse failures travel as CheckFailure values,
// not as returned errors, so sessions can record them as failed
// interactions instead of aborting.
type FactCheckResult interface {
	isFactCheckResult()
}

// CheckSuccess is a completed classification, including uncertain ones.
type CheckSuccess struct {
	// Classification is the agent's verdict on the statement.
	Classification Classification `json:"classification"`

	// Explanation is the agent's reasoning in prose.
	Explanation string `json:"explanation"`

	// Confidence is the agent's self-reported certainty in [0, 1].
	Confidence float64 `json:"confidence"`

	// TokenCount is an informational estimate of the tokens exchanged for
	// this check. It is never aggregated.
	TokenCount int `json:"token_count,omitempty"`
}

func (CheckSuccess) isFactCheckResult() {}

// CheckFailure is a terminal provider or contract failure: the agent
// produced no usable classification.
type CheckFailure struct {
	// Err is the underlying failure.
	Err error `json:"-"`
}

func (CheckFailure) isFactCheckResult() {}

// Message returns the failure text, or an empty string when Err is nil.
func (f CheckFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}
