package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/manusawe00z/go-bot/pkg/logger"
)

const (
	defaultGoogleBaseURL = "https://translate.google.com"
	// Google rejects translate_tts requests with longer q values.
	maxChunkRunes = 100
	userAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

type GoogleOptions struct {
	BaseURL string
	Slow    bool
	Timeout time.Duration
}

// GoogleSynthesizer talks to the Google Translate text-to-speech endpoint.
// Long text is sent as several requests whose MP3 bodies are concatenated.
type GoogleSynthesizer struct {
	baseURL    string
	slow       bool
	httpClient *http.Client
	log        *logger.Logger
}

func NewGoogleSynthesizer(opts GoogleOptions, log *logger.Logger) *GoogleSynthesizer {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGoogleBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &GoogleSynthesizer{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		slow:    opts.Slow,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		log: log,
	}
}

func (g *GoogleSynthesizer) Name() string { return "google" }

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no speakable text in input")
	}

	g.log.InfoCF("voice", "Synthesizing speech", map[string]any{
		"backend":     g.Name(),
		"text_length": len(text),
		"chunks":      len(chunks),
		"lang":        lang,
	})

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	g.log.DebugCF("voice", "Speech synthesized successfully", map[string]any{
		"size_bytes": audio.Len(),
		"lang":       lang,
	})

	return audio.Bytes(), nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, w io.Writer, chunk, lang string, idx, total int) error {
	speed := "1"
	if g.slow {
		speed = "0.24"
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	q.Set("ttsspeed", speed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", g.baseURL+"/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Google TTS error (status %d, lang %q): %s",
			resp.StatusCode, lang, strings.TrimSpace(string(body)))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read TTS audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Google TTS returned no audio")
	}
	return nil
}

// IsAvailable sends a HEAD request to the service root.
func (g *GoogleSynthesizer) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.log.DebugCF("voice", "Google TTS health check failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}

func isBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':', ',', '\n',
		'。', '！', '？', '；', '：', '，', '、', '…':
		return true
	}
	return false
}

// splitText breaks text into pieces of at most limit runes. Pieces end after
// punctuation where possible, then at whitespace, and are hard cut as a last
// resort. Adjacent short pieces are merged back up to limit. Pieces holding
// nothing but punctuation and spaces are dropped.
func splitText(text string, limit int) []string {
	var tokens []string
	var cur []rune
	for _, r := range strings.TrimSpace(text) {
		cur = append(cur, r)
		if isBreak(r) {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}

	var pieces []string
	for _, tok := range tokens {
		pieces = append(pieces, cutLong(strings.TrimSpace(tok), limit)...)
	}

	var out []string
	for _, p := range pieces {
		if !speakable(p) {
			continue
		}
		if n := len(out); n > 0 && utf8.RuneCountInString(out[n-1])+1+utf8.RuneCountInString(p) <= limit {
			out[n-1] = out[n-1] + " " + p
			continue
		}
		out = append(out, p)
	}
	return out
}

func cutLong(s string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(s) > limit {
		runes := []rune(s)
		cut := limit
		for i := limit; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		s = strings.TrimSpace(string(runes[cut:]))
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func speakable(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) && !unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}
