package assistant

import (
	"context"
	"errors"
)

// ErrAssistantNotFound is reported when a run references an assistant the upstream no longer knows.
var ErrAssistantNotFound = errors.New("assistant not found")

// RunEventKind identifies an upstream run event after normalization.
type RunEventKind int

const (
	RunEventDelta RunEventKind = iota
	RunEventCompleted
	RunEventFailed
)

func (k RunEventKind) String() string {
	switch k {
	case RunEventDelta:
		return "delta"
	case RunEventCompleted:
		return "completed"
	case RunEventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Annotation is a file citation attached to assistant text.
type Annotation struct {
	FileID     string
	Text       string
	Quote      string
	StartIndex int
	EndIndex   int
}

// RunEvent is one normalized event of a streaming assistant run.
// Completed carries the full message text and its annotations.
type RunEvent struct {
	Kind        RunEventKind
	Text        string
	Annotations []Annotation
	Err         error
}

// Question is a single-shot question sent to the assistant on a fresh thread.
type Question struct {
	AssistantID string
	Text        string
	FileIDs     []string
}

// Runner starts an assistant run and streams its events. The channel is closed
// after exactly one Completed or Failed event, or when ctx is done.
type Runner interface {
	StreamRun(ctx context.Context, q Question) (<-chan RunEvent, error)
}
