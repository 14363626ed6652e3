// Package metrics implements the aggregation and comparison engine at the
// center of a faceoff run: an append-only interaction log, per-group
// aggregates, weighted winner determination, and deterministic text reports.
//
// The engine is pure in-memory computation. It never measures time,
// performs I/O, or retries anything; sessions hand it finished
// observations and ask for derived results.
package metrics

import (
	"sync"
	"time"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// Collector is the append-only log of interaction records for one
// comparison run. An explicit instance is passed to every session that
// writes to it; its lifecycle equals the run lifecycle. A mutex serializes
// appends so per-group sessions may run concurrently, and reads take the
// same lock so an O(n) scan never observes a torn log.
type Collector struct {
	mu      sync.Mutex
	records []domain.InteractionRecord
	groups  []string
}

// NewCollector creates an empty collector for one comparison run.
func NewCollector() *Collector {
	return &Collector{}
}

// Record validates the record and appends it to the log. A zero CreatedAt
// is stamped with the append time. The log is append-only: records are
// never edited or removed for the life of the run.
func (c *Collector) Record(record domain.InteractionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seenLocked(record.Group) {
		c.groups = append(c.groups, record.Group)
	}
	c.records = append(c.records, record)
	return nil
}

// seenLocked reports whether the group label has appeared before.
// Callers must hold c.mu.
func (c *Collector) seenLocked(group string) bool {
	for _, g := range c.groups {
		if g == group {
			return true
		}
	}
	return false
}

// RecordsFor returns the records whose group equals the argument, in
// insertion order. An unknown group yields an empty result, not an error;
// a session where one agent produced zero records is a valid state.
func (c *Collector) RecordsFor(group string) []domain.InteractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []domain.InteractionRecord
	for _, r := range c.records {
		if r.Group == group {
			matched = append(matched, r)
		}
	}
	return matched
}

// Len returns the number of records appended so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Groups returns the distinct group labels in first-seen order.
func (c *Collector) Groups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	labels := make([]string, len(c.groups))
	copy(labels, c.groups)
	return labels
}

// Snapshot returns a copy of the whole log in insertion order.
func (c *Collector) Snapshot() []domain.InteractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]domain.InteractionRecord, len(c.records))
	copy(records, c.records)
	return records
}

// Aggregate computes the group's summary from the current log contents.
// It is recomputed on every call so it always reflects the latest appends.
func (c *Collector) Aggregate(group string) domain.Aggregate {
	return ComputeAggregate(group, c.RecordsFor(group))
}
