package contact

import (
	"context"
	"time"
)

// Source records where a persisted answer came from.
type Source string

const (
	SourceAssistant Source = "assistant"
	SourceFallback  Source = "fallback"
)

// Citation points to a document excerpt that informed an answer.
type Citation struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	Marker     string `json:"marker,omitempty"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// Record is one answered question. Records are append-only.
type Record struct {
	ID        string
	Username  string
	Subject   string
	Question  string
	Answer    string
	Citations []Citation
	Source    Source
	Date      string
	CreatedAt time.Time
}

// Request is an incoming support question.
type Request struct {
	Username string
	Subject  string
	Question string
}

// Answer is the collected result of a question in synchronous mode.
type Answer struct {
	ID        string
	Answer    string
	Citations []Citation
	Source    Source
}

// EventType tags a contact Event.
type EventType string

const (
	EventDelta    EventType = "delta"
	EventComplete EventType = "complete"
	EventFallback EventType = "fallback"
	EventFailed   EventType = "failed"
)

// Event is one step of an answer: Delta(text), Complete(citations),
// Fallback(text) or Failed(reason). A stream ends with Complete or Fallback.
type Event struct {
	Type      EventType
	Content   string
	Citations []Citation
	ID        string
	Reason    string
}

// Repository persists contact records.
type Repository interface {
	Create(ctx context.Context, record *Record) error
}

// FileSource exposes uploaded documents used as retrieval context.
type FileSource interface {
	RecentRemoteFileIDs(ctx context.Context, limit int) ([]string, error)
	FilenamesByRemoteID(ctx context.Context, remoteIDs []string) (map[string]string, error)
}

// AssistantHandle resolves the assistant used to answer questions.
type AssistantHandle interface {
	Ensure(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, id string)
}
