package domain

import (
	"time"
)

// InteractionRecord is one observation of a single agent processing one
// input. Every field is supplied by the caller, including both time
// measurements; the engine stores what it is handed and never measures time
// itself. Records are immutable once appended to a collector.
type InteractionRecord struct {
	// Group labels which logical agent variant produced this record, e.g.
	// "vanilla" or "baml". It is free-form and equality-compared as a
	// string, never constrained to an enum.
	Group string `json:"group"`

	// InputLabel carries the processed statement for traceability.
	// It never participates in aggregation.
	InputLabel string `json:"input_label"`

	// LatencySeconds is the caller-measured wall-clock time for the whole
	// interaction, including any speech legs in voice mode.
	LatencySeconds float64 `json:"latency_seconds"`

	// ResponseTimeSeconds is the caller-reported processing time for the
	// check itself. It may equal LatencySeconds or be computed
	// independently; both are stored as given and never reconciled.
	ResponseTimeSeconds float64 `json:"response_time_seconds"`

	// Correct reports whether the agent's output matched the expectation,
	// as judged entirely by the caller before record creation.
	Correct bool `json:"correct"`

	// HandoffSucceeded reports whether the interaction completed without a
	// terminal failure.
	HandoffSucceeded bool `json:"handoff_succeeded"`

	// TokenCount is informational only and never aggregated.
	TokenCount int `json:"token_count,omitempty"`

	// ErrorText is present only on failed interactions.
	ErrorText string `json:"error_text,omitempty"`

	// CreatedAt records when this observation was constructed. Collectors
	// default it to the append time when zero.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record invariants: a non-empty group and non-negative
// time measurements. It returns a RecordError naming the offending field.
func (r InteractionRecord) Validate() error {
	if r.Group == "" {
		return NewRecordError("group", "must not be empty")
	}
	if r.LatencySeconds < 0 {
		return NewRecordError("latency_seconds", "must not be negative")
	}
	if r.ResponseTimeSeconds < 0 {
		return NewRecordError("response_time_seconds", "must not be negative")
	}
	return nil
}
