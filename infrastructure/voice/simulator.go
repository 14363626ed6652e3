// Package voice provides a simulated speech pipeline for voice-mode
// comparison runs. Real STT/TTS engines are deliberately out of scope; the
// simulator reproduces their latency profile so voice sessions exercise the
// same timing paths a real pipeline would.
package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-faceoff/internal/ports"
)

const (
	// DefaultSTTLatency simulates speech-to-text processing time.
	DefaultSTTLatency = 100 * time.Millisecond

	// DefaultTTSLatency simulates text-to-speech processing time.
	DefaultTTSLatency = 200 * time.Millisecond

	// DefaultWordsPerMinute is a typical conversational speaking rate, used
	// to model how long synthesized audio plays.
	DefaultWordsPerMinute = 150
)

var validate = validator.New()

// SimulatorConfig tunes the simulated speech pipeline.
type SimulatorConfig struct {
	// STTLatency is the simulated transcription delay per utterance.
	STTLatency time.Duration `validate:"min=0"`

	// TTSLatency is the simulated synthesis delay per reply.
	TTSLatency time.Duration `validate:"min=0"`

	// WordsPerMinute is the speaking rate used to derive audio duration.
	WordsPerMinute int `validate:"min=1"`
}

// DefaultSimulatorConfig returns the latency profile of the original voice
// demo.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		STTLatency:     DefaultSTTLatency,
		TTSLatency:     DefaultTTSLatency,
		WordsPerMinute: DefaultWordsPerMinute,
	}
}

// Simulator implements ports.SpeechPipeline with configured delays instead
// of real speech engines. Transcription is an identity transform after the
// STT delay; synthesis reports a playback duration derived from the word
// count and speaking rate.
type Simulator struct {
	config SimulatorConfig
}

var _ ports.SpeechPipeline = (*Simulator)(nil)

// NewSimulator builds a Simulator from the given latency profile.
func NewSimulator(config SimulatorConfig) (*Simulator, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid simulator config: %w", err)
	}
	return &Simulator{config: config}, nil
}

// Transcribe waits out the STT delay and returns the utterance unchanged.
func (s *Simulator) Transcribe(ctx context.Context, utterance string) (string, error) {
	if err := wait(ctx, s.config.STTLatency); err != nil {
		return "", fmt.Errorf("transcription interrupted: %w", err)
	}
	return utterance, nil
}

// Synthesize waits out the TTS delay and reports the synthesized audio with
// its modeled playback duration.
func (s *Simulator) Synthesize(ctx context.Context, text string) (ports.SpokenAudio, error) {
	if err := wait(ctx, s.config.TTSLatency); err != nil {
		return ports.SpokenAudio{}, fmt.Errorf("synthesis interrupted: %w", err)
	}
	return ports.SpokenAudio{
		Text:     text,
		Duration: s.audioDuration(text),
	}, nil
}

// audioDuration models playback length at the configured speaking rate.
func (s *Simulator) audioDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	perWord := time.Minute / time.Duration(s.config.WordsPerMinute)
	return time.Duration(words) * perWord
}

// wait sleeps for d unless the context ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
