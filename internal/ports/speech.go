package ports

import (
	"context"
	"time"
)

// SpokenAudio is the synthesized form of a reply: the text that was spoken
// and how long the audio runs.
type SpokenAudio struct {
	// Text is the utterance that was synthesized.
	Text string

	// Duration is the playback length of the audio.
	Duration time.Duration
}

// SpeechPipeline defines the speech legs wrapped around a voice
// interaction. The shipped implementation is a simulator with configured
// delays; real STT/TTS engines are out of scope.
type SpeechPipeline interface {
	// Transcribe converts a caller utterance into text.
	Transcribe(ctx context.Context, utterance string) (string, error)

	// Synthesize converts the agent's reply into spoken audio.
	Synthesize(ctx context.Context, text string) (SpokenAudio, error)
}
