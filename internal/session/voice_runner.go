package session

import (
	"context"
	"fmt"
	"log/slog"
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

// Default conversation-quality scalars for the two shipped agents. Quality
// is a caller judgment the engine never derives; these are the harness
// defaults for voice comparisons.
const (
	DefaultVanillaQuality = 0.7
	DefaultSchemaQuality  = 0.9
)

// DefaultQualityScores returns the default per-group quality scalars keyed
// by the shipped agents' group labels.
func DefaultQualityScores() map[string]float64 {
	return map[string]float64{
		agents.VanillaGroup: DefaultVanillaQuality,
		agents.SchemaGroup:  DefaultSchemaQuality,
	}
}

// VoiceRunnerConfig configures one voice-mode comparison run.
type VoiceRunnerConfig struct {
	// AgentA and AgentB are the two checker variants under comparison.
	AgentA ports.FactChecker
	AgentB ports.FactChecker

	// Pipeline provides the speech legs wrapped around every turn.
	Pipeline ports.SpeechPipeline

	// Statements is the dataset both sessions speak through, in order.
	Statements []domain.Statement

	// Collector receives every interaction record. Nil gets a fresh one.
	Collector *metrics.Collector

	// Comparator scores the final aggregates. Nil defaults to the
	// interaction-quality profile. The profile must carry a quality term.
	Comparator *metrics.Comparator

	// Quality maps each group label to its conversation-quality scalar in
	// [0, 1]. Nil falls back to DefaultQualityScores; both agents' groups
	// must be covered.
	Quality map[string]float64

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

// VoiceRunner drives a voice-mode comparison run. Each turn transcribes the
// statement, checks the transcript, and synthesizes the spoken reply.
// LatencySeconds covers the whole turn including the speech legs;
// ResponseTimeSeconds covers the check alone.
type VoiceRunner struct {
	config  VoiceRunnerConfig
	quality map[string]float64
}

// NewVoiceRunner validates the configuration and creates a voice runner.
func NewVoiceRunner(config VoiceRunnerConfig) (*VoiceRunner, error) {
	if config.AgentA == nil || config.AgentB == nil {
		return nil, fmt.Errorf("voice runner requires two agents")
	}
	if config.AgentA.Name() == config.AgentB.Name() {
		return nil, fmt.Errorf("agents must carry distinct group labels, both are %q", config.AgentA.Name())
	}
	if config.Pipeline == nil {
		return nil, fmt.Errorf("voice runner requires a speech pipeline")
	}
	if len(config.Statements) == 0 {
		return nil, fmt.Errorf("voice runner requires at least one statement")
	}
	if config.Collector == nil {
		config.Collector = metrics.NewCollector()
	}
	if config.Comparator == nil {
		comparator, err := metrics.NewComparator(metrics.ComparatorConfig{
			Profile: domain.InteractionQualityProfile(),
		})
		if err != nil {
			return nil, fmt.Errorf("building default comparator: %w", err)
		}
		config.Comparator = comparator
	}
	if !config.Comparator.Profile().HasQualityTerm() {
		return nil, fmt.Errorf("profile %q has no quality term, use NewRunner",
			config.Comparator.Profile().Name)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	source := config.Quality
	if source == nil {
		source = DefaultQualityScores()
	}
	quality := make(map[string]float64, 2)
	for _, group := range []string{config.AgentA.Name(), config.AgentB.Name()} {
		score, ok := source[group]
		if !ok {
			return nil, fmt.Errorf("no conversation-quality score for group %q", group)
		}
		if score < 0 || score > 1 {
			return nil, fmt.Errorf("conversation-quality score for group %q must be in [0, 1], got %v", group, score)
		}
		quality[group] = score
	}

	return &VoiceRunner{config: config, quality: quality}, nil
}

// Collector returns the run's record log.
func (r *VoiceRunner) Collector() *metrics.Collector { return r.config.Collector }

// Run executes the voice comparison and returns the assembled result.
func (r *VoiceRunner) Run(ctx context.Context) (domain.RunResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	logger := r.config.Logger.With("run_id", runID, "mode", ModeVoice)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "VoiceRunner.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.mode", ModeVoice),
		attribute.String("run.provider", r.config.Provider),
		attribute.Int("run.statements", len(r.config.Statements)),
	))
	defer span.End()

	logger.Info("voice comparison run starting",
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

func (r *VoiceRunner) runSession(ctx context.Context, agent ports.FactChecker, logger *slog.Logger) error {
	logger = logger.With("group", agent.Name())
	for _, statement := range r.config.Statements {
		if err := r.voiceTurn(ctx, agent, statement, logger); err != nil {
			return err
		}
	}
	logger.Info("session complete", "interactions", len(r.config.Statements))
	return nil
}

// voiceTurn runs one spoken interaction: transcribe the statement, check
// the transcript, synthesize the reply. Speech pipeline errors abort the
// session; they mean the simulation itself is broken, not the agent.
func (r *VoiceRunner) voiceTurn(ctx context.Context, agent ports.FactChecker, statement domain.Statement, logger *slog.Logger) error {
	if r.config.Budget != nil {
		if err := r.config.Budget.Check(ctx); err != nil {
			logger.Warn("budget exhausted before turn", "error", err)
			return err
		}
	}

	turnCtx, span := otel.Tracer(tracerName).Start(ctx, "VoiceRunner.Turn", trace.WithAttributes(
		attribute.String("group", agent.Name()),
		attribute.String("statement.category", statement.Category),
	))

	turnStart := time.Now()
	transcript, err := r.config.Pipeline.Transcribe(turnCtx, statement.Text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return fmt.Errorf("group %s transcription: %w", agent.Name(), err)
	}

	heard := statement
	heard.Text = transcript

	checkStart := time.Now()
	result, err := agent.Check(turnCtx, heard)
	checkElapsed := time.Since(checkStart)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return fmt.Errorf("group %s check: %w", agent.Name(), err)
	}

	audio, err := r.config.Pipeline.Synthesize(turnCtx, replyText(result))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return fmt.Errorf("group %s synthesis: %w", agent.Name(), err)
	}
	turnElapsed := time.Since(turnStart)

	record := buildRecord(agent.Name(), statement, result, turnElapsed, checkElapsed)
	span.SetAttributes(
		attribute.Bool("interaction.correct", record.Correct),
		attribute.Bool("interaction.handoff_succeeded", record.HandoffSucceeded),
		attribute.Float64("turn.audio_seconds", audio.Duration.Seconds()),
	)
	span.SetStatus(codes.Ok, "")
	span.End()

	if err := r.config.Collector.Record(record); err != nil {
		return fmt.Errorf("recording interaction for group %s: %w", agent.Name(), err)
	}
	emitInteraction(r.config.Metrics, ModeVoice, record)

	logger.Debug("voice turn recorded",
		"statement", statement.Text,
		"correct", record.Correct,
		"handoff_succeeded", record.HandoffSucceeded,
		"latency_seconds", record.LatencySeconds,
		"response_time_seconds", record.ResponseTimeSeconds,
		"audio_seconds", audio.Duration.Seconds())

	if r.config.Budget != nil {
		if err := r.config.Budget.Charge(ctx, int64(record.TokenCount), turnElapsed, nil); err != nil {
			logger.Warn("budget exhausted", "error", err)
			return err
		}
	}
	return nil
}

func (r *VoiceRunner) finish(runID string, startedAt time.Time, logger *slog.Logger) (domain.RunResult, error) {
	groupA, groupB := r.config.AgentA.Name(), r.config.AgentB.Name()
	aggregates := []domain.Aggregate{
		r.config.Collector.Aggregate(groupA),
		r.config.Collector.Aggregate(groupB),
	}

	verdict, err := r.config.Comparator.CompareWithQuality(
		aggregates[0], aggregates[1], r.quality[groupA], r.quality[groupB])
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("comparing groups: %w", err)
	}

	logLatencyProfiles(logger, r.config.Collector, groupA, groupB)
	emitScores(r.config.Metrics, ModeVoice, verdict)
	logVerdict(logger, verdict)

	return domain.RunResult{
		ID:          runID,
		Mode:        ModeVoice,
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

// replyText is what the agent speaks back: the verdict and its explanation
// for successes, an apology for failures.
func replyText(result domain.FactCheckResult) string {
	switch v := result.(type) {
	case domain.CheckSuccess:
		if v.Explanation == "" {
			return fmt.Sprintf("That is %s.", v.Classification)
		}
		return fmt.Sprintf("That is %s. %s", v.Classification, v.Explanation)
	case domain.CheckFailure:
		return "Sorry, I could not verify that."
	}
	return ""
}
