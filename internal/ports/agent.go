// Package ports defines the core interfaces that form the contract between
// the domain layer and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// FactChecker classifies factual statements. Implementations wrap an LLM
// prompt-and-parse strategy; the two shipped variants differ only in how
// they prompt and how strictly they parse.
// Implementations must be safe for concurrent use.
type FactChecker interface {
	// Name returns the checker's group label, used to tag every
	// interaction record it produces.
	Name() string

	// Check classifies one statement. Provider and parse failures are
	// returned as a domain.CheckFailure result, not as an error, so
	// sessions can record them as failed interactions and continue. The
	// error return is reserved for context cancellation and caller bugs.
	//
	// Check performs no timing; sessions own the clocks.
	Check(ctx context.Context, statement domain.Statement) (domain.FactCheckResult, error)
}
