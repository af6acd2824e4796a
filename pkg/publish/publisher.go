// Package publish turns text into an audio file at a destination path.
//
// Audio is staged in a temporary file and moved into place with a single
// rename, so readers of the destination see either the previous file or
// the complete new one. Concurrent publishes to the same destination are
// not coordinated; whichever rename lands last wins.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/manusawe00z/go-bot/pkg/logger"
	"github.com/manusawe00z/go-bot/pkg/voice"
)

// renameFile is replaced in tests to fail between staging and the move.
var renameFile = os.Rename

type Request struct {
	Text        string
	Language    string
	Destination string
}

type Result struct {
	RequestID string
	Path      string
	Bytes     int
	Elapsed   time.Duration
}

type Publisher struct {
	synth    voice.Synthesizer
	log      *logger.Logger
	tempDir  string
	fileMode os.FileMode
	dirMode  os.FileMode
}

type Option func(*Publisher)

// WithTempDir sets where audio is staged. The rename only succeeds when
// dir is on the same filesystem as the destination.
func WithTempDir(dir string) Option {
	return func(p *Publisher) {
		p.tempDir = dir
	}
}

func WithFileMode(mode os.FileMode) Option {
	return func(p *Publisher) {
		p.fileMode = mode
	}
}

func WithDirMode(mode os.FileMode) Option {
	return func(p *Publisher) {
		p.dirMode = mode
	}
}

func New(synth voice.Synthesizer, log *logger.Logger, opts ...Option) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	p := &Publisher{
		synth:    synth,
		log:      log,
		fileMode: 0o644,
		dirMode:  0o755,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Publish synthesizes req.Text and atomically replaces req.Destination with
// the audio. Every failure is logged and returned as *Error. The
// destination is left untouched unless the final rename succeeds.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	id := uuid.NewString()
	start := time.Now()

	if req.Text == "" {
		return nil, p.fail(id, &Error{Kind: KindUsage, Op: "validate", Err: ErrEmptyText})
	}

	p.log.InfoCF("publish", "Converting text to speech", map[string]any{
		"request_id":  id,
		"backend":     p.synth.Name(),
		"lang":        req.Language,
		"text_length": len(req.Text),
	})

	audio, err := p.synth.Synthesize(ctx, req.Text, req.Language)
	if err != nil {
		return nil, p.fail(id, &Error{Kind: KindSynthesis, Op: "synthesize", Err: err})
	}
	if len(audio) == 0 {
		return nil, p.fail(id, &Error{Kind: KindSynthesis, Op: "synthesize", Err: fmt.Errorf("%s returned no audio", p.synth.Name())})
	}

	if dir := filepath.Dir(req.Destination); dir != "." {
		if err := os.MkdirAll(dir, p.dirMode); err != nil {
			return nil, p.fail(id, &Error{Kind: KindWrite, Op: "mkdir", Path: dir, Err: err})
		}
	}

	tmpPath, stageErr := p.stage(audio)
	if stageErr != nil {
		return nil, p.fail(id, stageErr)
	}

	if err := renameFile(tmpPath, req.Destination); err != nil {
		_ = os.Remove(tmpPath)
		return nil, p.fail(id, &Error{Kind: KindWrite, Op: "rename", Path: req.Destination, Err: err})
	}

	res := &Result{
		RequestID: id,
		Path:      req.Destination,
		Bytes:     len(audio),
		Elapsed:   time.Since(start),
	}
	p.log.InfoCF("publish", "Audio saved", map[string]any{
		"request_id": id,
		"path":       res.Path,
		"size_bytes": res.Bytes,
		"elapsed":    res.Elapsed.Round(time.Millisecond).String(),
	})
	return res, nil
}

// stage writes audio to a fresh temp file and returns its path. The temp
// file is removed again if anything fails.
func (p *Publisher) stage(audio []byte) (string, *Error) {
	tmp, err := os.CreateTemp(p.tempDir, "gotts-*.mp3")
	if err != nil {
		return "", &Error{Kind: KindWrite, Op: "create temp", Path: p.tempDir, Err: err}
	}
	tmpPath := tmp.Name()

	werr := func(op string, err error) *Error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &Error{Kind: KindWrite, Op: op, Path: tmpPath, Err: err}
	}

	if err := tmp.Chmod(p.fileMode); err != nil {
		return "", werr("chmod", err)
	}
	if _, err := tmp.Write(audio); err != nil {
		return "", werr("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", werr("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", &Error{Kind: KindWrite, Op: "close", Path: tmpPath, Err: err}
	}
	return tmpPath, nil
}

func (p *Publisher) fail(id string, e *Error) error {
	p.log.ErrorCF("publish", "Error in text to speech", map[string]any{
		"request_id": id,
		"kind":       e.Kind.String(),
		"error":      e.Error(),
	})
	return e
}
