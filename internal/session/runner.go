package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-faceoff/infrastructure/agents"
	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/metrics"
	"github.com/ahrav/go-faceoff/internal/ports"
)

// Run modes echoed into RunResult.Mode.
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// tracerName identifies session spans.
const tracerName = "session"

// RunnerConfig configures one text-mode comparison run.
type RunnerConfig struct {
	// AgentA and AgentB are the two checker variants under comparison.
	// Their Name() labels become the record groups and the verdict sides.
	AgentA ports.FactChecker
	AgentB ports.FactChecker

	// Statements is the dataset both sessions process, in order.
	Statements []domain.Statement

	// Collector receives every interaction record. Nil gets a fresh one.
	Collector *metrics.Collector

	// Comparator scores the final aggregates. Nil defaults to the
	// accuracy-weighted profile. The profile must not carry a quality term;
	// quality-scored runs go through VoiceRunner.
	Comparator *metrics.Comparator

	// Metrics receives operational telemetry. Optional.
	Metrics ports.MetricsCollector

	// Budget caps the run's LLM spend. Optional.
	Budget *Budget

	// Logger receives structured run logs. Nil defaults to slog.Default().
	Logger *slog.Logger

	// Provider and Model are echoed into the RunResult for traceability.
	Provider string
	Model    string
}

// Runner drives one comparison run: each agent's session processes the
// statements sequentially, and the two sessions run concurrently against
// the shared collector.
type Runner struct {
	config RunnerConfig
}

// NewRunner validates the configuration and creates a runner.
func NewRunner(config RunnerConfig) (*Runner, error) {
	if config.AgentA == nil || config.AgentB == nil {
		return nil, fmt.Errorf("runner requires two agents")
	}
	if config.AgentA.Name() == config.AgentB.Name() {
		return nil, fmt.Errorf("agents must carry distinct group labels, both are %q", config.AgentA.Name())
	}
	if len(config.Statements) == 0 {
		return nil, fmt.Errorf("runner requires at least one statement")
	}
	if config.Collector == nil {
		config.Collector = metrics.NewCollector()
	}
	if config.Comparator == nil {
		comparator, err := metrics.NewComparator(metrics.ComparatorConfig{
			Profile: domain.AccuracyWeightedProfile(),
		})
		if err != nil {
			return nil, fmt.Errorf("building default comparator: %w", err)
		}
		config.Comparator = comparator
	}
	if config.Comparator.Profile().HasQualityTerm() {
		return nil, fmt.Errorf("profile %q carries a quality term, use NewVoiceRunner",
			config.Comparator.Profile().Name)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Runner{config: config}, nil
}

// Collector returns the run's record log, for callers that want to derive
// further statistics after Run returns.
func (r *Runner) Collector() *metrics.Collector { return r.config.Collector }

// Run executes the comparison and returns the assembled result. It fails on
// context cancellation, budget exhaustion, or a checker contract violation;
// provider failures inside a check become failed records instead.
func (r *Runner) Run(ctx context.Context) (domain.RunResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	logger := r.config.Logger.With("run_id", runID, "mode", ModeText)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.mode", ModeText),
		attribute.String("run.provider", r.config.Provider),
		attribute.Int("run.statements", len(r.config.Statements)),
	))
	defer span.End()

	logger.Info("comparison run starting",
		"group_a", r.config.AgentA.Name(),
		"group_b", r.config.AgentB.Name(),
		"statements", len(r.config.Statements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for _, agent := range []ports.FactChecker{r.config.AgentA, r.config.AgentB} {
		g.Go(func() error { return r.runSession(gctx, agent, logger) })
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.RunResult{}, err
	}

	result, err := r.finish(runID, startedAt, logger)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.RunResult{}, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// runSession processes the statements sequentially for one agent. The
// collector handles cross-session interleaving; within a session there is a
// single logical writer.
func (r *Runner) runSession(ctx context.Context, agent ports.FactChecker, logger *slog.Logger) error {
	logger = logger.With("group", agent.Name())
	for _, statement := range r.config.Statements {
		if err := r.checkOne(ctx, agent, statement, logger); err != nil {
			return err
		}
	}
	logger.Info("session complete", "interactions", len(r.config.Statements))
	return nil
}

// checkOne runs a single interaction: budget gate, timed check, grading,
// record append, telemetry.
func (r *Runner) checkOne(ctx context.Context, agent ports.FactChecker, statement domain.Statement, logger *slog.Logger) error {
	if r.config.Budget != nil {
		if err := r.config.Budget.Check(ctx); err != nil {
			logger.Warn("budget exhausted before check", "error", err)
			return err
		}
	}

	checkCtx, span := otel.Tracer(tracerName).Start(ctx, "Runner.CheckStatement", trace.WithAttributes(
		attribute.String("group", agent.Name()),
		attribute.String("statement.category", statement.Category),
		attribute.String("statement.difficulty", statement.Difficulty),
	))

	start := time.Now()
	result, err := agent.Check(checkCtx, statement)
	elapsed := time.Since(start)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return fmt.Errorf("group %s check: %w", agent.Name(), err)
	}

	record := buildRecord(agent.Name(), statement, result, elapsed, elapsed)
	span.SetAttributes(
		attribute.Bool("interaction.correct", record.Correct),
		attribute.Bool("interaction.handoff_succeeded", record.HandoffSucceeded),
	)
	span.SetStatus(codes.Ok, "")
	span.End()

	if err := r.config.Collector.Record(record); err != nil {
		return fmt.Errorf("recording interaction for group %s: %w", agent.Name(), err)
	}
	emitInteraction(r.config.Metrics, ModeText, record)

	logger.Debug("interaction recorded",
		"statement", statement.Text,
		"correct", record.Correct,
		"handoff_succeeded", record.HandoffSucceeded,
		"latency_seconds", record.LatencySeconds)

	if r.config.Budget != nil {
		if err := r.config.Budget.Charge(ctx, int64(record.TokenCount), elapsed, nil); err != nil {
			logger.Warn("budget exhausted", "error", err)
			return err
		}
	}
	return nil
}

// finish aggregates the full log, decides the verdict, and assembles the
// run result.
func (r *Runner) finish(runID string, startedAt time.Time, logger *slog.Logger) (domain.RunResult, error) {
	groupA, groupB := r.config.AgentA.Name(), r.config.AgentB.Name()
	aggregates := []domain.Aggregate{
		r.config.Collector.Aggregate(groupA),
		r.config.Collector.Aggregate(groupB),
	}

	verdict, err := r.config.Comparator.Compare(aggregates[0], aggregates[1])
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("comparing groups: %w", err)
	}

	logLatencyProfiles(logger, r.config.Collector, groupA, groupB)
	emitScores(r.config.Metrics, ModeText, verdict)
	logVerdict(logger, verdict)

	return domain.RunResult{
		ID:          runID,
		Mode:        ModeText,
		Provider:    r.config.Provider,
		Model:       r.config.Model,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Aggregates:  aggregates,
		Verdict:     verdict,
		Report:      metrics.RenderReport(aggregates, verdict),
		Records:     r.config.Collector.Snapshot(),
	}, nil
}

// buildRecord converts one finished check into the record the collector
// stores. Failures become records with a failed handoff rather than being
// dropped, so both outcomes count toward the group's rates.
func buildRecord(group string, statement domain.Statement, result domain.FactCheckResult, latency, responseTime time.Duration) domain.InteractionRecord {
	record := domain.InteractionRecord{
		Group:               group,
		InputLabel:          statement.Text,
		LatencySeconds:      latency.Seconds(),
		ResponseTimeSeconds: responseTime.Seconds(),
		Correct:             agents.Grade(statement, result),
	}
	switch v := result.(type) {
	case domain.CheckSuccess:
		record.HandoffSucceeded = true
		record.TokenCount = v.TokenCount
	case domain.CheckFailure:
		record.ErrorText = v.Message()
	}
	return record
}

// emitInteraction reports one interaction to the operational metrics
// collector. Names are unprefixed; the Prometheus adapter namespaces them.
func emitInteraction(collector ports.MetricsCollector, mode string, record domain.InteractionRecord) {
	if collector == nil {
		return
	}
	collector.RecordCounter("interactions_total", 1, map[string]string{
		"group":   record.Group,
		"mode":    mode,
		"correct": strconv.FormatBool(record.Correct),
	})
	collector.RecordHistogram("interaction_latency_seconds", record.LatencySeconds, map[string]string{
		"group": record.Group,
		"mode":  mode,
	})
}

// emitScores publishes the final comparison scores as gauges.
func emitScores(collector ports.MetricsCollector, mode string, verdict domain.ComparisonVerdict) {
	if collector == nil {
		return
	}
	collector.RecordGauge("comparison_score", verdict.ScoreA, map[string]string{
		"group": verdict.GroupA, "mode": mode, "profile": verdict.Profile,
	})
	collector.RecordGauge("comparison_score", verdict.ScoreB, map[string]string{
		"group": verdict.GroupB, "mode": mode, "profile": verdict.Profile,
	})
}

// logLatencyProfiles summarizes both groups' latency distributions and
// their statistical comparison. Distributions are derivable from the record
// snapshot at any time, so they are logged rather than stored.
func logLatencyProfiles(logger *slog.Logger, collector *metrics.Collector, groupA, groupB string) {
	recordsA := collector.RecordsFor(groupA)
	recordsB := collector.RecordsFor(groupB)

	for _, profile := range []metrics.LatencyProfile{
		metrics.ComputeLatencyProfile(groupA, recordsA),
		metrics.ComputeLatencyProfile(groupB, recordsB),
	} {
		logger.Info("latency profile",
			"group", profile.Group,
			"count", profile.Count,
			"mean", profile.Mean,
			"std_dev", profile.StdDev,
			"p50", profile.P50,
			"p95", profile.P95)
	}

	comparison := metrics.CompareLatencies(groupA, groupB, recordsA, recordsB)
	logger.Info("latency comparison",
		"t_statistic", comparison.TStatistic,
		"p_value", comparison.PValue,
		"effect_size", comparison.EffectSize,
		"significant", comparison.Significant)
}

func logVerdict(logger *slog.Logger, verdict domain.ComparisonVerdict) {
	winner := verdict.Winner
	if verdict.Tie {
		winner = "tie"
	}
	logger.Info("comparison complete",
		"winner", winner,
		"score_a", verdict.ScoreA,
		"score_b", verdict.ScoreB,
		"profile", verdict.Profile)
}
