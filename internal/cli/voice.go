package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-faceoff/infrastructure/agents"
	"github.com/ahrav/go-faceoff/infrastructure/voice"
	"github.com/ahrav/go-faceoff/internal/session"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Run the voice-mode comparison",
	Long: `Runs both agents through the simulated speech pipeline. Every turn is
transcribed, checked, and spoken back, so latency covers the full voice
round trip and the verdict weighs conversation quality alongside accuracy
and handoff reliability.`,
	Example: `  # Offline voice demo against the built-in mock provider
  faceoff voice

  # Five statements against Google, exporting the results
  faceoff voice --provider google --count 5 --save`,
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

		pipeline, err := voice.NewSimulator(voice.SimulatorConfig{
			STTLatency:     time.Duration(cfg.Voice.STTDelayMS) * time.Millisecond,
			TTSLatency:     time.Duration(cfg.Voice.TTSDelayMS) * time.Millisecond,
			WordsPerMinute: cfg.Voice.WordsPerMinute,
		})
		if err != nil {
			return err
		}

		runner, err := session.NewVoiceRunner(session.VoiceRunnerConfig{
			AgentA:     h.vanilla,
			AgentB:     h.schema,
			Pipeline:   pipeline,
			Statements: h.statements,
			Quality: map[string]float64{
				agents.VanillaGroup: cfg.Voice.VanillaQuality,
				agents.SchemaGroup:  cfg.Voice.SchemaQuality,
			},
			Metrics:  collector,
			Budget:   h.budget,
			Logger:   logger,
			Provider: h.provider,
			Model:    h.client.GetModel(),
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
	rootCmd.AddCommand(voiceCmd)
	addComparisonFlags(voiceCmd)
}
