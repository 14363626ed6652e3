package domain

// Aggregate is the derived per-group summary of logged records. It is
// computed fresh from the log on every request and never cached, so it
// always reflects the current log contents. An aggregate over zero records
// carries all-zero rates and averages rather than being an error.
type Aggregate struct {
	// Group is the label the summary was computed for.
	Group string `json:"group"`

	// AverageLatency is the arithmetic mean of LatencySeconds over the
	// group's records, 0 when the group has none.
	AverageLatency float64 `json:"average_latency"`

	// AverageResponseTime is the arithmetic mean of ResponseTimeSeconds
	// over the group's records, 0 when the group has none.
	AverageResponseTime float64 `json:"average_response_time"`

	// AccuracyRate is the fraction of records judged correct.
	AccuracyRate float64 `json:"accuracy_rate"`

	// HandoffSuccessRate is the fraction of records whose handoff
	// succeeded.
	HandoffSuccessRate float64 `json:"handoff_success_rate"`

	// TotalCount is the number of records the summary covers.
	TotalCount int `json:"total_count"`
}

// IsEmpty reports whether the aggregate covers zero records.
func (a Aggregate) IsEmpty() bool { return a.TotalCount == 0 }
