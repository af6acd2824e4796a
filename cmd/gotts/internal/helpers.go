package internal

import (
	"fmt"
	"io"
	"runtime"

	"github.com/manusawe00z/go-bot/pkg/config"
	"github.com/manusawe00z/go-bot/pkg/logger"
	"github.com/manusawe00z/go-bot/pkg/publish"
	"github.com/manusawe00z/go-bot/pkg/voice"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

// LoadConfig reads envFile (when it exists) and then the environment.
// An empty envFile skips dotenv loading.
func LoadConfig(envFile string) (*config.Config, error) {
	return config.Load(envFile)
}

// NewLogger builds the process logger from cfg. debug forces DEBUG level.
func NewLogger(cfg *config.Config, w io.Writer, debug bool) (*logger.Logger, error) {
	log := logger.New(w)

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = logger.DEBUG
	}
	log.SetLevel(level)

	if cfg.Log.File != "" {
		if err := log.EnableFileLogging(cfg.Log.File); err != nil {
			return nil, err
		}
	}
	return log, nil
}

// NewPublisher wires the configured synthesizer into a publisher.
func NewPublisher(cfg *config.Config, log *logger.Logger) (*publish.Publisher, error) {
	synth, err := voice.NewSynthesizer(cfg.Voice, log)
	if err != nil {
		return nil, err
	}
	return publish.New(synth, log, publish.WithTempDir(cfg.TempDir)), nil
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GetVersion returns the version string
func GetVersion() string {
	return version
}
