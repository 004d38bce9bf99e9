package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/assistant"
	"framelink-support/internal/infrastructure/metrics"
	"framelink-support/internal/infrastructure/observability"
	"framelink-support/internal/utils/platformerrors"
	"framelink-support/internal/utils/recordid"
)

const (
	modeStream = "stream"
	modeSync   = "sync"

	statePending   = "pending"
	stateEmitting  = "emitting-deltas"
	stateCompleted = "completed"
	stateFailed    = "failed"
	stateFallback  = "fallback-emitted"
)

// Service answers support questions with the assistant, or a canned fallback.
type Service struct {
	cfg        *config.Config
	repo       Repository
	files      FileSource
	assistants AssistantHandle
	runner     assistant.Runner
	fallback   *FallbackGenerator
	citations  *citationResolver
	configured bool
	log        zerolog.Logger
	now        func() time.Time
}

// NewService wires the contact service. configured is false when no API key is set.
func NewService(
	cfg *config.Config,
	repo Repository,
	files FileSource,
	assistants AssistantHandle,
	runner assistant.Runner,
	fallback *FallbackGenerator,
	configured bool,
	log zerolog.Logger,
) (*Service, error) {
	log = log.With().Str("component", "contact-service").Logger()
	resolver, err := newCitationResolver(cfg.CitationCacheSize, files, log)
	if err != nil {
		return nil, fmt.Errorf("citation cache: %w", err)
	}
	if fallback == nil {
		fallback = DefaultFallback()
	}
	return &Service{
		cfg:        cfg,
		repo:       repo,
		files:      files,
		assistants: assistants,
		runner:     runner,
		fallback:   fallback,
		citations:  resolver,
		configured: configured,
		log:        log,
		now:        time.Now,
	}, nil
}

// Streaming reports whether answers are delivered as an event stream.
func (s *Service) Streaming() bool {
	return s.cfg.ContactStreaming
}

// Stream validates req and starts answering it. The returned channel yields
// deltas followed by one Complete, or a Failed followed by one Fallback, then closes.
func (s *Service) Stream(ctx context.Context, req Request) (<-chan Event, error) {
	return s.start(ctx, req, modeStream)
}

// Ask answers req and returns the collected result.
func (s *Service) Ask(ctx context.Context, req Request) (*Answer, error) {
	events, err := s.start(ctx, req, modeSync)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	answer := &Answer{Source: SourceAssistant}
	for ev := range events {
		switch ev.Type {
		case EventDelta:
			text.WriteString(ev.Content)
		case EventComplete:
			answer.ID = ev.ID
			answer.Citations = ev.Citations
			answer.Answer = text.String()
		case EventFallback:
			answer.ID = ev.ID
			answer.Answer = ev.Content
			answer.Citations = []Citation{}
			answer.Source = SourceFallback
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *Service) start(ctx context.Context, req Request, mode string) (<-chan Event, error) {
	req.Question = strings.TrimSpace(req.Question)
	req.Username = strings.TrimSpace(req.Username)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Question == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Question is required", nil, "")
	}
	if !s.configured {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable,
			"OpenAI API key not configured", nil, "")
	}

	out := make(chan Event, 16)
	go s.answer(ctx, req, mode, out)
	return out, nil
}

// answerRun carries one answer through its states. ctx outlives the client;
// client only gates delivery of frames.
type answerRun struct {
	s         *Service
	ctx       context.Context
	client    context.Context
	detached  bool
	span      trace.Span
	out       chan<- Event
	req       Request
	mode      string
	state     string
	startedAt time.Time
}

func (s *Service) answer(client context.Context, req Request, mode string, out chan<- Event) {
	defer close(out)

	ctx := context.WithoutCancel(client)
	fileIDs, err := s.files.RecentRemoteFileIDs(ctx, s.cfg.ContactMaxAttachments)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load retrieval files, asking without attachments")
		fileIDs = nil
	}

	ctx, span := observability.StartContactSpan(ctx, mode, len(fileIDs))
	defer span.End()
	observability.AnnotateQuestion(span, req.Username, req.Question)

	run := &answerRun{s: s, ctx: ctx, client: client, span: span, out: out, req: req, mode: mode, state: statePending, startedAt: s.now()}

	assistantID, err := s.assistants.Ensure(ctx)
	if err != nil {
		run.fail(err)
		return
	}

	events, err := s.runner.StreamRun(ctx, assistant.Question{
		AssistantID: assistantID,
		Text:        req.Question,
		FileIDs:     fileIDs,
	})
	if err != nil {
		s.invalidateIfMissing(ctx, assistantID, err)
		run.fail(err)
		return
	}

	var text strings.Builder
	for ev := range events {
		switch ev.Kind {
		case assistant.RunEventDelta:
			if ev.Text == "" {
				continue
			}
			run.transition(stateEmitting)
			text.WriteString(ev.Text)
			run.send(Event{Type: EventDelta, Content: ev.Text})
		case assistant.RunEventCompleted:
			if text.Len() == 0 && ev.Text != "" {
				run.transition(stateEmitting)
				text.WriteString(ev.Text)
				run.send(Event{Type: EventDelta, Content: ev.Text})
			}
			run.complete(text.String(), s.citations.Resolve(ctx, ev.Annotations))
			return
		case assistant.RunEventFailed:
			s.invalidateIfMissing(ctx, assistantID, ev.Err)
			run.fail(ev.Err)
			return
		}
	}

	run.fail(errors.New("assistant stream ended before completion"))
}

func (s *Service) invalidateIfMissing(ctx context.Context, assistantID string, err error) {
	if errors.Is(err, assistant.ErrAssistantNotFound) {
		s.assistants.Invalidate(ctx, assistantID)
	}
}

func (r *answerRun) transition(to string) {
	if r.state == to {
		return
	}
	observability.AddStatusTransition(r.span, r.state, to)
	r.state = to
}

// send delivers ev unless the client has gone away. Once detached, the run
// keeps going so the record is still written.
func (r *answerRun) send(ev Event) {
	if r.detached {
		return
	}
	select {
	case r.out <- ev:
	case <-r.client.Done():
		r.detached = true
		r.s.log.Debug().Err(r.client.Err()).Msg("client went away, finishing the answer without it")
	}
}

func (r *answerRun) complete(answer string, citations []Citation) {
	id := r.s.persist(r.ctx, r.req, answer, citations, SourceAssistant)
	r.transition(stateCompleted)
	metrics.RecordContactAnswer(r.mode, string(SourceAssistant), r.s.now().Sub(r.startedAt).Seconds())
	r.send(Event{Type: EventComplete, Citations: citations, ID: id})
}

func (r *answerRun) fail(err error) {
	if err == nil {
		err = errors.New("unknown assistant failure")
	}
	r.transition(stateFailed)
	observability.RecordError(r.span, err)
	r.s.log.Warn().Err(err).Str("mode", r.mode).Msg("assistant run failed, using fallback answer")
	r.send(Event{Type: EventFailed, Reason: err.Error()})

	answer := r.s.fallback.Answer(r.req.Question)
	id := r.s.persist(r.ctx, r.req, answer, []Citation{}, SourceFallback)
	r.transition(stateFallback)
	metrics.RecordContactAnswer(r.mode, string(SourceFallback), r.s.now().Sub(r.startedAt).Seconds())
	r.send(Event{Type: EventFallback, Content: answer, ID: id})
}

// persist stores the record and returns its id, or "" when the write failed.
func (s *Service) persist(ctx context.Context, req Request, answer string, citations []Citation, source Source) string {
	now := s.now().UTC()
	record := &Record{
		ID:        recordid.New(recordid.PrefixContact),
		Username:  req.Username,
		Subject:   req.Subject,
		Question:  req.Question,
		Answer:    answer,
		Citations: citations,
		Source:    source,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		perr := platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to save contact record")
		platformerrors.LogError(s.log, perr)
		return ""
	}
	return record.ID
}
