// Package cli wires the comparison harness into a cobra command tree: text
// and voice comparison runs, dataset inspection, and run history backed by
// the SQLite store. Commands load configuration, overlay their flags, and
// hand off to the session runners; all engine logic lives below this layer.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-faceoff/internal/config"
	"github.com/ahrav/go-faceoff/internal/observability"
)

var (
	// cfgFile is the --config flag, empty for built-in defaults.
	cfgFile string

	// logLevelFlag overrides the configured log level when set.
	logLevelFlag string

	// metricsAddr overrides the configured Prometheus listen address.
	metricsAddr string

	rootCmd = &cobra.Command{
		Use:   "faceoff",
		Short: "Compare free-text and schema-enforced prompting head to head",
		Long: `faceoff runs the same fact-checking workload through two agent variants,
one prompting for free text and one enforcing a JSON reply contract, and
reports accuracy, latency, and handoff reliability side by side.

The mock provider needs no credentials, so 'faceoff run' works offline.
Real providers read their API keys from the conventional environment
variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY).`,
	}
)

// Execute runs the root command under ctx. Cancelling ctx aborts an
// in-flight comparison run.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// loadConfig loads the configuration, overlays the global flags, and
// installs the default logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	logger := observability.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, logger, nil
}

// serveMetrics exposes the Prometheus registry on addr for the lifetime of
// the process. Listen failures are logged rather than fatal so a busy port
// never blocks a comparison run.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
}
