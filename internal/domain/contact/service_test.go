package contact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/assistant"
	"framelink-support/internal/utils/platformerrors"
)

type mockRepository struct {
	mu      sync.Mutex
	records []*Record
	err     error
}

func (m *mockRepository) Create(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockRepository) saved() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Record(nil), m.records...)
}

type mockFiles struct {
	ids   []string
	names map[string]string
}

func (m *mockFiles) RecentRemoteFileIDs(context.Context, int) ([]string, error) {
	return m.ids, nil
}

func (m *mockFiles) FilenamesByRemoteID(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := m.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type mockHandle struct {
	EnsureFunc  func(ctx context.Context) (string, error)
	invalidated []string
}

func (m *mockHandle) Ensure(ctx context.Context) (string, error) {
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx)
	}
	return "asst_1", nil
}

func (m *mockHandle) Invalidate(_ context.Context, id string) {
	m.invalidated = append(m.invalidated, id)
}

type mockRunner struct {
	events   []assistant.RunEvent
	err      error
	question assistant.Question
}

func (m *mockRunner) StreamRun(_ context.Context, q assistant.Question) (<-chan assistant.RunEvent, error) {
	m.question = q
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan assistant.RunEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

// gatedRunner emits head, waits for release, then emits tail.
type gatedRunner struct {
	head    []assistant.RunEvent
	tail    []assistant.RunEvent
	release chan struct{}
}

func (g *gatedRunner) StreamRun(context.Context, assistant.Question) (<-chan assistant.RunEvent, error) {
	ch := make(chan assistant.RunEvent)
	go func() {
		defer close(ch)
		for _, ev := range g.head {
			ch <- ev
		}
		<-g.release
		for _, ev := range g.tail {
			ch <- ev
		}
	}()
	return ch, nil
}

func newTestService(t *testing.T, repo Repository, runner assistant.Runner, handle AssistantHandle) *Service {
	t.Helper()
	cfg := &config.Config{ContactMaxAttachments: 10, CitationCacheSize: 16, ContactStreaming: true}
	files := &mockFiles{ids: []string{"file-1"}, names: map[string]string{"file-1": "faq.pdf"}}
	svc, err := NewService(cfg, repo, files, handle, runner, DefaultFallback(), true, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestStreamDeltasMatchPersistedAnswer(t *testing.T) {
	repo := &mockRepository{}
	runner := &mockRunner{events: []assistant.RunEvent{
		{Kind: assistant.RunEventDelta, Text: "Open "},
		{Kind: assistant.RunEventDelta, Text: "Settings"},
		{Kind: assistant.RunEventDelta, Text: " and export."},
		{Kind: assistant.RunEventCompleted, Text: "Open Settings and export.", Annotations: []assistant.Annotation{
			{FileID: "file-1", Text: "[1]", Quote: "Settings > Export", StartIndex: 5, EndIndex: 8},
		}},
	}}
	svc := newTestService(t, repo, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Username: "ana", Question: "  How do I export?  "})
	require.NoError(t, err)
	events := collect(t, ch)

	var deltas strings.Builder
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, EventDelta, ev.Type)
		deltas.WriteString(ev.Content)
	}
	last := events[len(events)-1]
	require.Equal(t, EventComplete, last.Type)

	saved := repo.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, deltas.String(), saved[0].Answer)
	assert.Equal(t, SourceAssistant, saved[0].Source)
	assert.Equal(t, "How do I export?", saved[0].Question)
	assert.Equal(t, saved[0].ID, last.ID)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, saved[0].Date)

	require.Len(t, last.Citations, 1)
	assert.Equal(t, "faq.pdf", last.Citations[0].Filename)
	assert.Equal(t, "Settings > Export", last.Citations[0].Excerpt)

	assert.Equal(t, "asst_1", runner.question.AssistantID)
	assert.Equal(t, []string{"file-1"}, runner.question.FileIDs)
}

func TestStreamEmitsCompletedTextWhenNoDeltas(t *testing.T) {
	repo := &mockRepository{}
	runner := &mockRunner{events: []assistant.RunEvent{
		{Kind: assistant.RunEventCompleted, Text: "Whole answer."},
	}}
	svc := newTestService(t, repo, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Question: "hi"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Len(t, events, 2)
	assert.Equal(t, Event{Type: EventDelta, Content: "Whole answer."}, events[0])
	assert.Equal(t, EventComplete, events[1].Type)
	assert.Empty(t, events[1].Citations)
	assert.Equal(t, "Whole answer.", repo.saved()[0].Answer)
}

func TestStreamFallsBackOnPasswordQuestion(t *testing.T) {
	repo := &mockRepository{}
	runner := &mockRunner{err: errors.New("upstream unavailable")}
	svc := newTestService(t, repo, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Question: "I forgot my Password"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Len(t, events, 2)
	assert.Equal(t, EventFailed, events[0].Type)
	assert.Contains(t, events[0].Reason, "upstream unavailable")
	assert.Equal(t, EventFallback, events[1].Type)
	assert.Equal(t, PasswordResetAnswer, events[1].Content)

	saved := repo.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, SourceFallback, saved[0].Source)
	assert.Equal(t, PasswordResetAnswer, saved[0].Answer)
	assert.Equal(t, saved[0].ID, events[1].ID)
}

func TestStreamFailedRunAfterDeltasIsTerminal(t *testing.T) {
	repo := &mockRepository{}
	runner := &mockRunner{events: []assistant.RunEvent{
		{Kind: assistant.RunEventDelta, Text: "Partial"},
		{Kind: assistant.RunEventFailed, Err: errors.New("run failed")},
		{Kind: assistant.RunEventDelta, Text: "ignored"},
	}}
	svc := newTestService(t, repo, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Question: "What is the price?"})
	require.NoError(t, err)
	events := collect(t, ch)

	require.Len(t, events, 3)
	assert.Equal(t, EventDelta, events[0].Type)
	assert.Equal(t, EventFailed, events[1].Type)
	assert.Equal(t, Event{Type: EventFallback, Content: PlanSummaryAnswer, ID: events[2].ID}, events[2])
	assert.Len(t, repo.saved(), 1)
}

func TestStreamInvalidatesMissingAssistant(t *testing.T) {
	handle := &mockHandle{}
	runner := &mockRunner{events: []assistant.RunEvent{
		{Kind: assistant.RunEventFailed, Err: assistant.ErrAssistantNotFound},
	}}
	svc := newTestService(t, &mockRepository{}, runner, handle)

	ch, err := svc.Stream(context.Background(), Request{Question: "hello"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, []string{"asst_1"}, handle.invalidated)
	assert.Equal(t, DefaultAnswer, events[len(events)-1].Content)
}

func TestStreamEndingWithoutCompletionFallsBack(t *testing.T) {
	runner := &mockRunner{events: []assistant.RunEvent{{Kind: assistant.RunEventDelta, Text: "cut"}}}
	svc := newTestService(t, &mockRepository{}, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Question: "How do I upload?"})
	require.NoError(t, err)
	events := collect(t, ch)

	assert.Equal(t, UploadHelpAnswer, events[len(events)-1].Content)
}

func TestStreamCompletesWithoutIDWhenPersistFails(t *testing.T) {
	repo := &mockRepository{err: errors.New("db down")}
	runner := &mockRunner{events: []assistant.RunEvent{{Kind: assistant.RunEventDelta, Text: "ok"}, {Kind: assistant.RunEventCompleted}}}
	svc := newTestService(t, repo, runner, &mockHandle{})

	ch, err := svc.Stream(context.Background(), Request{Question: "hi"})
	require.NoError(t, err)
	events := collect(t, ch)

	last := events[len(events)-1]
	assert.Equal(t, EventComplete, last.Type)
	assert.Empty(t, last.ID)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &mockRunner{}, &mockHandle{})

	_, err := svc.Ask(context.Background(), Request{Question: "   "})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestAskWithoutAPIKeyIsUnavailable(t *testing.T) {
	cfg := &config.Config{ContactMaxAttachments: 10, CitationCacheSize: 16}
	svc, err := NewService(cfg, &mockRepository{}, &mockFiles{}, &mockHandle{}, &mockRunner{}, nil, false, zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), Request{Question: "hi"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnavailable))
}

func TestAskCollectsAnswer(t *testing.T) {
	repo := &mockRepository{}
	runner := &mockRunner{events: []assistant.RunEvent{
		{Kind: assistant.RunEventDelta, Text: "Hello "},
		{Kind: assistant.RunEventDelta, Text: "there"},
		{Kind: assistant.RunEventCompleted},
	}}
	svc := newTestService(t, repo, runner, &mockHandle{})

	answer, err := svc.Ask(context.Background(), Request{Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", answer.Answer)
	assert.Equal(t, SourceAssistant, answer.Source)
	assert.Equal(t, repo.saved()[0].ID, answer.ID)
}

func TestAskReturnsFallbackWhenAssistantUnavailable(t *testing.T) {
	handle := &mockHandle{EnsureFunc: func(context.Context) (string, error) {
		return "", errors.New("cannot create assistant")
	}}
	svc := newTestService(t, &mockRepository{}, &mockRunner{}, handle)

	answer, err := svc.Ask(context.Background(), Request{Question: "password help"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, answer.Source)
	assert.Equal(t, PasswordResetAnswer, answer.Answer)
	assert.Empty(t, answer.Citations)
}

func TestStreamPersistsAfterClientDisconnect(t *testing.T) {
	tests := []struct {
		name       string
		tail       []assistant.RunEvent
		wantAnswer string
		wantSource Source
	}{
		{
			name:       "run completes",
			tail:       []assistant.RunEvent{{Kind: assistant.RunEventDelta, Text: "answer"}, {Kind: assistant.RunEventCompleted}},
			wantAnswer: "Partial answer",
			wantSource: SourceAssistant,
		},
		{
			name:       "run fails",
			tail:       []assistant.RunEvent{{Kind: assistant.RunEventFailed, Err: errors.New("run failed")}},
			wantAnswer: PasswordResetAnswer,
			wantSource: SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			runner := &gatedRunner{
				head:    []assistant.RunEvent{{Kind: assistant.RunEventDelta, Text: "Partial "}},
				tail:    tt.tail,
				release: make(chan struct{}),
			}
			svc := newTestService(t, repo, runner, &mockHandle{})

			ctx, cancel := context.WithCancel(context.Background())
			ch, err := svc.Stream(ctx, Request{Question: "password reset?"})
			require.NoError(t, err)

			first := <-ch
			require.Equal(t, EventDelta, first.Type)
			cancel()
			close(runner.release)
			collect(t, ch)

			saved := repo.saved()
			require.Len(t, saved, 1)
			assert.Equal(t, tt.wantAnswer, saved[0].Answer)
			assert.Equal(t, tt.wantSource, saved[0].Source)
		})
	}
}
