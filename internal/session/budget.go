// Package session orchestrates comparison runs: it drives the two agent
// variants over a statement dataset, measures wall-clock time around each
// check, grades the results, and feeds finished observations to the metrics
// engine. All timing and I/O live here; the engine below stays pure.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// BudgetLimits defines resource ceilings for one comparison run.
// A zero limit means the resource is unlimited.
type BudgetLimits struct {
	// MaxTokens caps the total estimated tokens across both sessions.
	MaxTokens int64

	// MaxCalls caps the total LLM-backed interactions across both sessions.
	MaxCalls int64
}

// Unlimited reports whether neither ceiling is set.
func (l BudgetLimits) Unlimited() bool { return l.MaxTokens <= 0 && l.MaxCalls <= 0 }

// Usage is a point-in-time snapshot of the resources a run has consumed.
type Usage struct {
	// Tokens is the estimated token total charged so far.
	Tokens int64

	// Calls is the number of interactions charged so far.
	Calls int64
}

// BudgetObserver receives budget events around each charged interaction.
// Implementations add tracing and metrics without coupling the counters
// to an observability backend.
type BudgetObserver interface {
	// PreCheck is called before an interaction runs, with the usage the
	// ceiling check was made against.
	PreCheck(ctx context.Context, usage Usage, limits BudgetLimits)

	// PostCheck is called after an interaction is charged, with the updated
	// usage, the interaction's elapsed time, and the error that ended it.
	// A *domain.BudgetExceededError here means the charge crossed a ceiling.
	PostCheck(ctx context.Context, usage Usage, limits BudgetLimits, elapsed time.Duration, err error)
}

// Budget enforces token and call ceilings for one run. The two group
// sessions share a single instance; the counters are atomic so concurrent
// charges need no further locking.
type Budget struct {
	limits   BudgetLimits
	observer BudgetObserver

	tokens atomic.Int64
	calls  atomic.Int64
}

// NewBudget creates a budget with the given ceilings. The observer is
// optional.
func NewBudget(limits BudgetLimits, observer BudgetObserver) *Budget {
	return &Budget{limits: limits, observer: observer}
}

// Limits returns the configured ceilings.
func (b *Budget) Limits() BudgetLimits { return b.limits }

// Usage returns a snapshot of consumed resources. The two counters are read
// independently, so a snapshot taken during concurrent charges may be
// mid-charge consistent; totals at rest are exact.
func (b *Budget) Usage() Usage {
	return Usage{Tokens: b.tokens.Load(), Calls: b.calls.Load()}
}

// Check validates current usage against the ceilings before an interaction
// starts. A BudgetExceededError means the session must stop before issuing
// another LLM call.
func (b *Budget) Check(ctx context.Context) error {
	usage := b.Usage()
	if b.observer != nil {
		b.observer.PreCheck(ctx, usage, b.limits)
	}
	return b.checkUsage(usage)
}

// Charge books a completed interaction, one call plus its token estimate,
// then re-checks the ceilings to catch usage that crossed a limit during
// the interaction itself. The charge that crossed stays booked so Usage
// reflects what was actually consumed.
func (b *Budget) Charge(ctx context.Context, tokens int64, elapsed time.Duration, checkErr error) error {
	b.calls.Add(1)
	if tokens > 0 {
		b.tokens.Add(tokens)
	}

	usage := b.Usage()
	budgetErr := b.checkUsage(usage)

	if b.observer != nil {
		observed := checkErr
		if observed == nil {
			observed = budgetErr
		}
		b.observer.PostCheck(ctx, usage, b.limits, elapsed, observed)
	}
	return budgetErr
}

// checkUsage compares usage against the ceilings. Usage at a limit is
// within budget; only crossing it fails.
func (b *Budget) checkUsage(usage Usage) error {
	if b.limits.MaxTokens > 0 && usage.Tokens > b.limits.MaxTokens {
		return domain.NewBudgetExceededError("tokens", usage.Tokens, b.limits.MaxTokens)
	}
	if b.limits.MaxCalls > 0 && usage.Calls > b.limits.MaxCalls {
		return domain.NewBudgetExceededError("calls", usage.Calls, b.limits.MaxCalls)
	}
	return nil
}
