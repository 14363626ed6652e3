package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-faceoff/infrastructure/agents"
	"github.com/ahrav/go-faceoff/infrastructure/cache"
	"github.com/ahrav/go-faceoff/infrastructure/llm"
	"github.com/ahrav/go-faceoff/infrastructure/middleware"
	"github.com/ahrav/go-faceoff/infrastructure/storage"
	"github.com/ahrav/go-faceoff/internal/config"
	"github.com/ahrav/go-faceoff/internal/dataset"
	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/output"
	"github.com/ahrav/go-faceoff/internal/ports"
	"github.com/ahrav/go-faceoff/internal/session"
)

// collector is the process-wide Prometheus collector. promauto registers
// metric families with the default registry exactly once, so it is built at
// package init and shared by whichever command runs.
var collector = middleware.NewPrometheusMetrics()

var (
	providerFlag     string
	modelFlag        string
	countFlag        int
	includeAmbiguous bool
	saveResults      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the text-mode comparison",
	Long: `Runs both agents over the statement dataset concurrently and prints the
comparison report. Both agents share one LLM client, so provider latency
and cost variance apply to each side equally.`,
	Example: `  # Offline demo against the built-in mock provider
  faceoff run

  # Ten statements against OpenAI, exporting JSON and CSV
  faceoff run --provider openai --count 10 --save

  # A specific model with the ambiguous statements included
  faceoff run --provider anthropic --model claude-3-5-haiku-latest --include-ambiguous`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		applyComparisonFlags(cmd, &cfg)
		if cfg.Metrics.Addr != "" {
			serveMetrics(cfg.Metrics.Addr, logger)
		}

		h, err := buildHarness(cfg, logger)
		if err != nil {
			return err
		}

		runner, err := session.NewRunner(session.RunnerConfig{
			AgentA:     h.vanilla,
			AgentB:     h.schema,
			Statements: h.statements,
			Metrics:    collector,
			Budget:     h.budget,
			Logger:     logger,
			Provider:   h.provider,
			Model:      h.client.GetModel(),
		})
		if err != nil {
			return err
		}

		result, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		return deliver(cmd.Context(), cmd.OutOrStdout(), cfg, result, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addComparisonFlags(runCmd)
}

// addComparisonFlags registers the flags the run and voice commands share.
func addComparisonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&providerFlag, "provider", "", "LLM provider: mock, openai, anthropic, or google")
	cmd.Flags().StringVar(&modelFlag, "model", "", "model name (defaults to the provider's default)")
	cmd.Flags().IntVar(&countFlag, "count", 0, "limit each agent to this many statements (0 runs all)")
	cmd.Flags().BoolVar(&includeAmbiguous, "include-ambiguous", false, "include the ambiguous statements")
	cmd.Flags().BoolVar(&saveResults, "save", false, "export the run as JSON and CSV under the save path")
}

// applyComparisonFlags overlays the shared flags onto the loaded
// configuration. Only flags the user actually set override the file and
// environment values.
func applyComparisonFlags(cmd *cobra.Command, cfg *config.Config) {
	if providerFlag != "" {
		cfg.LLM.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.LLM.Model = modelFlag
	}
	if cmd.Flags().Changed("count") {
		cfg.Run.Count = countFlag
	}
	if cmd.Flags().Changed("include-ambiguous") {
		cfg.Run.IncludeAmbiguous = includeAmbiguous
	}
}

// harness bundles the pieces a comparison run needs: the shared client,
// both agent variants, the statement set, and the optional budget.
type harness struct {
	client     ports.LLMClient
	provider   string
	vanilla    *agents.VanillaAgent
	schema     *agents.SchemaAgent
	statements []domain.Statement
	budget     *session.Budget
}

// buildHarness wires the LLM registry, agents, dataset, and budget from the
// configuration. Both agents share one middleware-wrapped client so the
// comparison isolates prompting strategy from everything else.
func buildHarness(cfg config.Config, logger *slog.Logger) (*harness, error) {
	mws := []llm.Middleware{
		llm.TracingMiddleware("faceoff"),
		llm.MetricsMiddleware(collector),
	}
	if !cfg.Cache.Disabled {
		store, err := buildCacheStore(cfg.Cache, logger)
		if err != nil {
			return nil, err
		}
		mws = append(mws, llm.CacheMiddleware(store, time.Duration(cfg.Cache.TTLSeconds)*time.Second))
	}
	mws = append(mws, llm.RetryMiddleware(2, 200*time.Millisecond, 2*time.Second))

	registry, err := llm.NewRegistry(llm.RegistryConfig{
		Providers:         llm.DefaultProviders,
		DefaultProvider:   cfg.LLM.Provider,
		DefaultTimeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		DefaultMiddleware: mws,
	})
	if err != nil {
		return nil, err
	}

	ref := cfg.LLM.Provider
	if cfg.LLM.Model != "" {
		ref = cfg.LLM.Provider + "/" + cfg.LLM.Model
	}
	client, err := registry.GetClient(ref)
	if err != nil {
		return nil, err
	}

	vanillaConfig := agents.DefaultVanillaConfig()
	vanillaConfig.Temperature = cfg.LLM.Temperature
	vanillaConfig.MaxTokens = cfg.LLM.MaxTokens
	vanilla, err := agents.NewVanillaAgent(client, vanillaConfig)
	if err != nil {
		return nil, err
	}

	schemaConfig := agents.DefaultSchemaConfig()
	schemaConfig.Temperature = cfg.LLM.Temperature
	schemaConfig.MaxTokens = cfg.LLM.MaxTokens
	schema, err := agents.NewSchemaAgent(client, schemaConfig)
	if err != nil {
		return nil, err
	}

	statements, err := selectStatements(cfg.Run)
	if err != nil {
		return nil, err
	}

	return &harness{
		client:     client,
		provider:   cfg.LLM.Provider,
		vanilla:    vanilla,
		schema:     schema,
		statements: statements,
		budget:     buildBudget(cfg.Budget),
	}, nil
}

// selectStatements picks the statement set for a run. The built-in facts
// are the default; IncludeAmbiguous adds the uncertain statements, while a
// configured DatasetPath replaces the built-ins entirely. Count caps the
// result.
func selectStatements(cfg config.RunConfig) ([]domain.Statement, error) {
	statements := dataset.Facts()
	if cfg.IncludeAmbiguous {
		statements = dataset.Default()
	}
	if cfg.DatasetPath != "" {
		loaded, err := dataset.Load(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("loading dataset: %w", err)
		}
		statements = loaded
	}
	if cfg.Count > 0 {
		statements = dataset.Limit(statements, cfg.Count)
	}
	return statements, nil
}

// buildBudget creates the run budget, or nil when no limit is configured.
func buildBudget(cfg config.BudgetConfig) *session.Budget {
	if cfg.MaxTokens <= 0 && cfg.MaxCalls <= 0 {
		return nil
	}
	return session.NewBudget(session.BudgetLimits{
		MaxTokens: cfg.MaxTokens,
		MaxCalls:  cfg.MaxCalls,
	}, middleware.NewOTelBudgetObserver(collector))
}

// buildCacheStore selects Redis when a URL is configured and the in-memory
// store otherwise.
func buildCacheStore(cfg config.CacheConfig, logger *slog.Logger) (ports.CacheStore, error) {
	if cfg.RedisURL != "" {
		store, err := cache.NewRedisStore(cfg.RedisURL, "")
		if err != nil {
			return nil, fmt.Errorf("building Redis cache: %w", err)
		}
		logger.Info("caching LLM responses in Redis")
		return store, nil
	}
	logger.Info("caching LLM responses in memory")
	return cache.NewMemoryStore(), nil
}

// deliver prints the report and handles the optional artifact export and
// run-store save.
func deliver(ctx context.Context, w io.Writer, cfg config.Config, result domain.RunResult, logger *slog.Logger) error {
	fmt.Fprintln(w, result.Report)

	if saveResults {
		jsonPath, err := output.WriteRunJSON(cfg.Run.SavePath, result)
		if err != nil {
			return fmt.Errorf("exporting JSON: %w", err)
		}
		csvPath, err := output.WriteRunCSV(cfg.Run.SavePath, result)
		if err != nil {
			return fmt.Errorf("exporting CSV: %w", err)
		}
		logger.Info("run exported", "json", jsonPath, "csv", csvPath)
	}

	if cfg.Storage.DBPath != "" {
		store, err := storage.NewSQLiteRunStore(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		defer store.Close()
		if err := store.SaveRun(ctx, result); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		logger.Info("run saved", "run_id", result.ID, "db", cfg.Storage.DBPath)
	}
	return nil
}
