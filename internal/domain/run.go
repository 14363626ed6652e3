package domain

import (
	"time"
)

// RunResult is the complete outcome of one comparison run: identity,
// configuration echoes, the per-group aggregates, the verdict, the rendered
// report, and the full record snapshot. Latency distributions are not
// stored; they are derivable from Records at any time.
type RunResult struct {
	// ID uniquely identifies this run (a UUID).
	ID string `json:"id"`

	// Mode is the run flavor, "text" or "voice".
	Mode string `json:"mode"`

	// Provider and Model echo the LLM configuration the run used.
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Aggregates are the per-group summaries, in group first-seen order.
	Aggregates []Aggregate `json:"aggregates"`

	// Verdict is the comparison outcome.
	Verdict ComparisonVerdict `json:"verdict"`

	// Report is the rendered text report.
	Report string `json:"report"`

	// Records is the full interaction log in insertion order.
	Records []InteractionRecord `json:"records"`
}

// Duration returns the wall-clock time the run took.
func (r RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// TotalInteractions returns the number of recorded interactions.
func (r RunResult) TotalInteractions() int { return len(r.Records) }

// RunSummary is the light projection of a run used for history listings.
type RunSummary struct {
	// ID identifies the summarized run.
	ID string `json:"id"`

	// Mode is the run flavor, "text" or "voice".
	Mode string `json:"mode"`

	// Provider echoes the LLM provider the run used.
	Provider string `json:"provider"`

	// Winner is the winning group label, empty on a tie.
	Winner string `json:"winner,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// TotalInteractions is the number of records the run produced.
	TotalInteractions int `json:"total_interactions"`
}
