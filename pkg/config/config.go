package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/manusawe00z/go-bot/pkg/logger"
)

const (
	BackendGoogle = "google"
	BackendKokoro = "kokoro"
)

type GoogleConfig struct {
	BaseURL string `env:"GOTTS_GOOGLE_BASE_URL"`
	Slow    bool   `env:"GOTTS_GOOGLE_SLOW"`
}

type KokoroConfig struct {
	APIBase string `env:"GOTTS_KOKORO_API_BASE"`
	Voice   string `env:"GOTTS_KOKORO_VOICE"`
}

type VoiceConfig struct {
	Backend string        `env:"GOTTS_BACKEND"`
	Timeout time.Duration `env:"GOTTS_TIMEOUT"`
	Google  GoogleConfig
	Kokoro  KokoroConfig
}

type LogConfig struct {
	Level string `env:"GOTTS_LOG_LEVEL"`
	File  string `env:"GOTTS_LOG_FILE"`
}

type ServerConfig struct {
	Addr              string `env:"GOTTS_SERVER_ADDR"`
	OutputDir         string `env:"GOTTS_SERVER_OUTPUT_DIR"`
	APIKey            string `env:"GOTTS_SERVER_API_KEY"`
	RequestsPerMinute int    `env:"GOTTS_SERVER_RPM"`
}

type Config struct {
	// Language is used when the caller does not name one.
	Language string `env:"GOTTS_LANGUAGE"`
	Output   string `env:"GOTTS_OUTPUT"`
	// TempDir is where audio is staged before the rename. Empty means os.TempDir().
	TempDir string `env:"GOTTS_TEMP_DIR"`

	Voice  VoiceConfig
	Log    LogConfig
	Server ServerConfig
}

func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Output:   "tts.mp3",
		Voice: VoiceConfig{
			Backend: BackendGoogle,
			Timeout: 30 * time.Second,
			Google: GoogleConfig{
				BaseURL: "https://translate.google.com",
			},
			Kokoro: KokoroConfig{
				APIBase: "http://localhost:8102",
				Voice:   "af_nova",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			OutputDir:         "audio",
			RequestsPerMinute: 30,
		},
	}
}

// Load returns the defaults overridden by the environment. Variables from
// dotenvPath are added first without replacing ones already set; a missing
// file is not an error.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}

	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Voice.Backend {
	case BackendGoogle, BackendKokoro:
	default:
		return fmt.Errorf("unknown TTS backend %q", c.Voice.Backend)
	}
	if c.Voice.Timeout <= 0 {
		return fmt.Errorf("TTS timeout must be positive, got %s", c.Voice.Timeout)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("server requests per minute must not be negative, got %d", c.Server.RequestsPerMinute)
	}
	return nil
}
