package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/metrics"
	"github.com/ahrav/go-faceoff/internal/ports"
)

// stubChecker is a scripted FactChecker. Unscripted statements succeed with
// the statement's own expected classification, so the default is a perfect
// agent; entries in results override per statement text.
type stubChecker struct {
	name    string
	delay   time.Duration
	err     error
	results map[string]domain.FactCheckResult

	mu   sync.Mutex
	seen []string
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(ctx context.Context, statement domain.Statement) (domain.FactCheckResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seen = append(s.seen, statement.Text)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if result, ok := s.results[statement.Text]; ok {
		return result, nil
	}
	return domain.CheckSuccess{
		Classification: statement.Expected,
		Explanation:    "scripted answer",
		Confidence:     0.9,
		TokenCount:     40,
	}, nil
}

func (s *stubChecker) statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

// captureMetrics records emissions for assertions.
type captureMetrics struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string][]float64
	histograms map[string]int
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string][]float64),
		histograms: make(map[string]int),
	}
}

func (c *captureMetrics) RecordLatency(string, time.Duration, map[string]string) {}

func (c *captureMetrics) RecordCounter(metric string, value float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[metric] += value
}

func (c *captureMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[metric] = append(c.gauges[metric], value)
}

func (c *captureMetrics) RecordHistogram(metric string, _ float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histograms[metric]++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStatements() []domain.Statement {
	return []domain.Statement{
		{Text: "The sun is a star.", Expected: domain.ClassificationTrue, Category: "astronomy", Difficulty: "easy"},
		{Text: "The moon is made of cheese.", Expected: domain.ClassificationFalse, Category: "science", Difficulty: "easy"},
		{Text: "The best editor is vim.", Expected: domain.ClassificationUncertain, Category: "technology", Difficulty: "hard"},
	}
}

func newTestRunner(t *testing.T, config RunnerConfig) *Runner {
	t.Helper()
	if config.AgentA == nil {
		config.AgentA = &stubChecker{name: "vanilla"}
	}
	if config.AgentB == nil {
		config.AgentB = &stubChecker{name: "baml"}
	}
	if config.Statements == nil {
		config.Statements = testStatements()
	}
	if config.Logger == nil {
		config.Logger = quietLogger()
	}
	runner, err := NewRunner(config)
	require.NoError(t, err)
	return runner
}

func TestNewRunner_Validation(t *testing.T) {
	qualityComparator, err := metrics.NewComparator(metrics.ComparatorConfig{
		Profile: domain.InteractionQualityProfile(),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		config  RunnerConfig
		wantErr string
	}{
		{
			name: "missing agent",
			config: RunnerConfig{
				AgentA:     &stubChecker{name: "vanilla"},
				Statements: testStatements(),
			},
			wantErr: "two agents",
		},
		{
			name: "duplicate group labels",
			config: RunnerConfig{
				AgentA:     &stubChecker{name: "vanilla"},
				AgentB:     &stubChecker{name: "vanilla"},
				Statements: testStatements(),
			},
			wantErr: "distinct group labels",
		},
		{
			name: "empty dataset",
			config: RunnerConfig{
				AgentA: &stubChecker{name: "vanilla"},
				AgentB: &stubChecker{name: "baml"},
			},
			wantErr: "at least one statement",
		},
		{
			name: "quality profile rejected",
			config: RunnerConfig{
				AgentA:     &stubChecker{name: "vanilla"},
				AgentB:     &stubChecker{name: "baml"},
				Statements: testStatements(),
				Comparator: qualityComparator,
			},
			wantErr: "quality term",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, runner)
		})
	}
}

func TestNewRunner_DefaultsFilled(t *testing.T) {
	// Given a minimal config.
	runner, err := NewRunner(RunnerConfig{
		AgentA:     &stubChecker{name: "vanilla"},
		AgentB:     &stubChecker{name: "baml"},
		Statements: testStatements(),
	})

	// Then collector, comparator, and logger defaults are filled in.
	require.NoError(t, err)
	assert.NotNil(t, runner.Collector())
	assert.Equal(t, "accuracy_weighted", runner.config.Comparator.Profile().Name)
	assert.NotNil(t, runner.config.Logger)
}

func TestRunner_Run_RecordsAllInteractions(t *testing.T) {
	// Given two perfect agents over three statements.
	runner := newTestRunner(t, RunnerConfig{Provider: "mock", Model: "mock-model"})

	// When the run executes.
	result, err := runner.Run(context.Background())

	// Then every interaction is logged and the result is fully assembled.
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, ModeText, result.Mode)
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, "mock-model", result.Model)
	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.CompletedAt.Before(result.StartedAt))

	require.Len(t, result.Aggregates, 2)
	assert.Equal(t, "vanilla", result.Aggregates[0].Group)
	assert.Equal(t, "baml", result.Aggregates[1].Group)
	assert.Equal(t, 3, result.Aggregates[0].TotalCount)
	assert.Equal(t, 3, result.Aggregates[1].TotalCount)

	assert.Equal(t, 6, result.TotalInteractions())
	assert.Equal(t, 6, runner.Collector().Len())
	assert.Contains(t, result.Report, "Agent Performance Comparison Report")
	assert.Equal(t, "vanilla", result.Verdict.GroupA)
	assert.Equal(t, "baml", result.Verdict.GroupB)
}

func TestRunner_Run_EachAgentSeesEveryStatement(t *testing.T) {
	// Given two agents whose calls are recorded.
	agentA := &stubChecker{name: "vanilla"}
	agentB := &stubChecker{name: "baml"}
	runner := newTestRunner(t, RunnerConfig{AgentA: agentA, AgentB: agentB})

	// When the run executes.
	_, err := runner.Run(context.Background())

	// Then each session walked the dataset in order.
	require.NoError(t, err)
	want := []string{
		"The sun is a star.",
		"The moon is made of cheese.",
		"The best editor is vim.",
	}
	assert.Equal(t, want, agentA.statements())
	assert.Equal(t, want, agentB.statements())
}

func TestRunner_Run_GradesAgainstExpectations(t *testing.T) {
	// Given one agent that misclassifies a single statement.
	agentA := &stubChecker{
		name: "vanilla",
		results: map[string]domain.FactCheckResult{
			"The moon is made of cheese.": domain.CheckSuccess{
				Classification: domain.ClassificationTrue,
				Confidence:     0.8,
			},
		},
	}
	runner := newTestRunner(t, RunnerConfig{AgentA: agentA})

	// When the run executes.
	result, err := runner.Run(context.Background())

	// Then the miss shows up in that group's accuracy alone.
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, result.Aggregates[0].AccuracyRate, 1e-9)
	assert.InDelta(t, 1.0, result.Aggregates[1].AccuracyRate, 1e-9)
	assert.Equal(t, "baml", result.Verdict.Winner)
}

func TestRunner_Run_FailuresBecomeFailedRecords(t *testing.T) {
	// Given one agent that suffers a provider failure on one statement.
	agentB := &stubChecker{
		name: "baml",
		results: map[string]domain.FactCheckResult{
			"The sun is a star.": domain.CheckFailure{Err: errors.New("completion failed: boom")},
		},
	}
	runner := newTestRunner(t, RunnerConfig{AgentB: agentB})

	// When the run executes.
	result, err := runner.Run(context.Background())

	// Then the run still completes and the failure is a failed record.
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, result.Aggregates[1].HandoffSuccessRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, result.Aggregates[1].AccuracyRate, 1e-9)

	var failed []domain.InteractionRecord
	for _, record := range result.Records {
		if record.ErrorText != "" {
			failed = append(failed, record)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "baml", failed[0].Group)
	assert.False(t, failed[0].Correct)
	assert.False(t, failed[0].HandoffSucceeded)
	assert.Contains(t, failed[0].ErrorText, "boom")
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	// Given slow agents and a short deadline.
	runner := newTestRunner(t, RunnerConfig{
		AgentA: &stubChecker{name: "vanilla", delay: 5 * time.Second},
		AgentB: &stubChecker{name: "baml", delay: 5 * time.Second},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// When the run executes.
	start := time.Now()
	_, err := runner.Run(ctx)

	// Then it aborts promptly with the cancellation.
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunner_Run_CheckerErrorAbortsRun(t *testing.T) {
	// Given an agent that violates the checker contract.
	agentA := &stubChecker{name: "vanilla", err: errors.New("nil statement")}
	runner := newTestRunner(t, RunnerConfig{AgentA: agentA})

	// When the run executes.
	_, err := runner.Run(context.Background())

	// Then the run fails rather than recording garbage.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vanilla check")
}

func TestRunner_Run_BudgetStopsRun(t *testing.T) {
	// Given a budget too small for the full dataset.
	budget := NewBudget(BudgetLimits{MaxCalls: 3}, nil)
	runner := newTestRunner(t, RunnerConfig{Budget: budget})

	// When the run executes.
	_, err := runner.Run(context.Background())

	// Then the run stops with the exhaustion and the overrun stays small.
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBudgetExceeded)
	assert.GreaterOrEqual(t, budget.Usage().Calls, int64(4))
	assert.LessOrEqual(t, budget.Usage().Calls, int64(6))
}

func TestRunner_Run_EmitsMetrics(t *testing.T) {
	// Given a metrics collector.
	capture := newCaptureMetrics()
	runner := newTestRunner(t, RunnerConfig{Metrics: capture})

	// When the run executes.
	_, err := runner.Run(context.Background())

	// Then interactions and final scores were emitted.
	require.NoError(t, err)
	assert.Equal(t, 6.0, capture.counters["interactions_total"])
	assert.Equal(t, 6, capture.histograms["interaction_latency_seconds"])
	assert.Len(t, capture.gauges["comparison_score"], 2)
}

func TestBuildRecord(t *testing.T) {
	statement := domain.Statement{
		Text:       "The sun is a star.",
		Expected:   domain.ClassificationTrue,
		Category:   "astronomy",
		Difficulty: "easy",
	}

	tests := []struct {
		name           string
		result         domain.FactCheckResult
		wantCorrect    bool
		wantHandoff    bool
		wantTokenCount int
		wantErrorText  string
	}{
		{
			name: "correct success",
			result: domain.CheckSuccess{
				Classification: domain.ClassificationTrue,
				Confidence:     0.9,
				TokenCount:     55,
			},
			wantCorrect:    true,
			wantHandoff:    true,
			wantTokenCount: 55,
		},
		{
			name: "wrong success",
			result: domain.CheckSuccess{
				Classification: domain.ClassificationFalse,
				Confidence:     0.9,
			},
			wantCorrect: false,
			wantHandoff: true,
		},
		{
			name:          "failure",
			result:        domain.CheckFailure{Err: errors.New("no json found")},
			wantCorrect:   false,
			wantHandoff:   false,
			wantErrorText: "no json found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := buildRecord("vanilla", statement, tt.result, 120*time.Millisecond, 80*time.Millisecond)

			assert.Equal(t, "vanilla", record.Group)
			assert.Equal(t, statement.Text, record.InputLabel)
			assert.InDelta(t, 0.120, record.LatencySeconds, 1e-9)
			assert.InDelta(t, 0.080, record.ResponseTimeSeconds, 1e-9)
			assert.Equal(t, tt.wantCorrect, record.Correct)
			assert.Equal(t, tt.wantHandoff, record.HandoffSucceeded)
			assert.Equal(t, tt.wantTokenCount, record.TokenCount)
			assert.Equal(t, tt.wantErrorText, record.ErrorText)
		})
	}
}

var _ ports.FactChecker = (*stubChecker)(nil)
var _ ports.MetricsCollector = (*captureMetrics)(nil)
