package publish

import (
	"errors"
	"fmt"
)

// Kind classifies why a publish failed.
type Kind int

const (
	// KindUsage means the request itself was unusable, e.g. empty text.
	KindUsage Kind = iota + 1
	// KindSynthesis means the synthesizer failed or returned no audio.
	KindSynthesis
	// KindWrite means staging or moving the audio file failed.
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindSynthesis:
		return "synthesis"
	case KindWrite:
		return "write"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrEmptyText is wrapped by the usage error returned for empty text.
var ErrEmptyText = errors.New("text must not be empty")

// Error is returned by Publisher.Publish for every failure.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a publish error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}
