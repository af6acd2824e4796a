package voice

import (
	"context"
	"fmt"

	"github.com/manusawe00z/go-bot/pkg/config"
	"github.com/manusawe00z/go-bot/pkg/logger"
)

// Synthesizer converts text in the given language to MP3-encoded audio.
// Implementations make a single attempt; callers decide what to do on error.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
	IsAvailable() bool
}

// NewSynthesizer builds the backend named by cfg.Backend.
func NewSynthesizer(cfg config.VoiceConfig, log *logger.Logger) (Synthesizer, error) {
	switch cfg.Backend {
	case config.BackendGoogle, "":
		return NewGoogleSynthesizer(GoogleOptions{
			BaseURL: cfg.Google.BaseURL,
			Slow:    cfg.Google.Slow,
			Timeout: cfg.Timeout,
		}, log), nil
	case config.BackendKokoro:
		return NewKokoroSynthesizer(cfg.Kokoro.APIBase, cfg.Kokoro.Voice, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown TTS backend %q", cfg.Backend)
	}
}
