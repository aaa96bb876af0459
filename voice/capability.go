// Package voice turns recorded speech into search text.
package voice

import (
	"context"
	"io"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/metrics"
)

var log = logger.New("voice")

type (
	// Audio is a recorded voice message.
	Audio struct {
		Content  io.Reader
		FileName string
	}

	Options struct {
		// Continuous keeps the session open after the final result.
		Continuous     bool
		InterimResults bool
		Language       string
	}

	// Capability starts a speech-to-text session. StartListening returns false
	// when capture could not start; otherwise the callbacks are invoked from
	// another goroutine and onState(false) is always the last call.
	Capability interface {
		StartListening(ctx context.Context, audio Audio, onText func(text string), onState func(listening bool), opts Options) bool
	}

	// Unavailable is used when no speech-to-text backend is configured.
	Unavailable struct{}
)

func DefaultOptions() Options {
	return Options{
		Continuous:     false,
		InterimResults: true,
		Language:       "en-US",
	}
}

func (Unavailable) StartListening(context.Context, Audio, func(string), func(bool), Options) bool {
	metrics.VoiceSessionsTotal.WithLabelValues("unavailable").Inc()
	return false
}

// New returns the Whisper capability if apiKey is set.
func New(apiKey string, opts ...WhisperOption) Capability {
	if apiKey == "" {
		log.Info().Msg("OPENAI_API_KEY not set, voice search is unavailable")
		return Unavailable{}
	}
	return NewWhisper(apiKey, opts...)
}
