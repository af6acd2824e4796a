package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/manusawe00z/go-bot/pkg/logger"
)

// KokoroSynthesizer uses a Kokoro TTS server (OpenAI-compatible /v1/audio/speech API).
type KokoroSynthesizer struct {
	apiBase    string
	voice      string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

type kokoroRequest struct {
	Model    string `json:"model"`
	Input    string `json:"input"`
	Voice    string `json:"voice"`
	Format   string `json:"response_format,omitempty"`
	LangCode string `json:"lang_code,omitempty"`
}

// NewKokoroSynthesizer creates a Kokoro TTS client.
// apiBase defaults to "http://localhost:8102".
// voice defaults to "af_nova".
func NewKokoroSynthesizer(apiBase, voice string, timeout time.Duration, log *logger.Logger) *KokoroSynthesizer {
	if apiBase == "" {
		apiBase = "http://localhost:8102"
	}
	if voice == "" {
		voice = "af_nova"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	log.DebugCF("voice", "Creating Kokoro TTS synthesizer", map[string]any{
		"api_base": apiBase,
		"voice":    voice,
	})

	return &KokoroSynthesizer{
		apiBase: strings.TrimRight(apiBase, "/"),
		voice:   voice,
		model:   "kokoro",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (s *KokoroSynthesizer) Name() string { return "kokoro" }

// Synthesize posts text to the speech endpoint and returns the MP3 body.
func (s *KokoroSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	s.log.InfoCF("voice", "Synthesizing speech", map[string]any{
		"backend":     s.Name(),
		"text_length": len(text),
		"voice":       s.voice,
		"lang":        lang,
	})

	reqBody := kokoroRequest{
		Model:    s.model,
		Input:    text,
		Voice:    s.voice,
		Format:   "mp3",
		LangCode: lang,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	url := s.apiBase + "/v1/audio/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Kokoro TTS error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("Kokoro TTS returned no audio")
	}

	s.log.DebugCF("voice", "Speech synthesized successfully", map[string]any{
		"size_bytes": len(audio),
		"voice":      s.voice,
	})

	return audio, nil
}

// IsAvailable checks if the Kokoro TTS server is reachable.
func (s *KokoroSynthesizer) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/v1/models", nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.DebugCF("voice", "Kokoro TTS health check failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	defer resp.Body.Close()

	available := resp.StatusCode == http.StatusOK
	s.log.DebugCF("voice", "Kokoro TTS availability", map[string]any{
		"available":   available,
		"status_code": resp.StatusCode,
	})
	return available
}
