package speech

import (
	"context"
	"time"

	"voice_trader/internal/domain"
)

// NullTranscriber satisfies domain.Transcriber where no speech model is
// wired in. Every chunk transcribes to the empty string, so the listener
// idles in passive mode; commands then come from the interactive surface.
type NullTranscriber struct{}

func (NullTranscriber) Transcribe(samples []float32, sampleRate int) (string, error) {
	return "", nil
}

// SilentAudioSource satisfies domain.AudioSource without a microphone.
// Record blocks for the requested duration and returns silence, keeping the
// listening loop's timing behavior realistic.
type SilentAudioSource struct{}

func (SilentAudioSource) Record(ctx context.Context, seconds float64, sampleRate int) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	}
	return make([]float32, int(seconds*float64(sampleRate))), nil
}

var _ domain.Transcriber = NullTranscriber{}
var _ domain.AudioSource = SilentAudioSource{}
