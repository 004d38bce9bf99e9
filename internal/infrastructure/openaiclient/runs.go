package openaiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"resty.dev/v3"

	"framelink-support/internal/domain/assistant"
	"framelink-support/internal/utils/platformerrors"
)

const (
	eventPrefix          = "event:"
	dataPrefix           = "data:"
	doneMarker           = "[DONE]"
	runChannelBuffer     = 32
	scannerInitialBuffer = 12 * 1024
	scannerMaxBuffer     = 10 * 1024 * 1024
)

type attachmentTool struct {
	Type string `json:"type"`
}

type messageAttachment struct {
	FileID string           `json:"file_id"`
	Tools  []attachmentTool `json:"tools"`
}

type threadMessage struct {
	Role        string              `json:"role"`
	Content     string              `json:"content"`
	Attachments []messageAttachment `json:"attachments,omitempty"`
}

type createThreadAndRunRequest struct {
	AssistantID string `json:"assistant_id"`
	Stream      bool   `json:"stream"`
	Thread      struct {
		Messages []threadMessage `json:"messages"`
	} `json:"thread"`
}

type fileCitation struct {
	FileID string `json:"file_id"`
	Quote  string `json:"quote"`
}

type textAnnotation struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	StartIndex   int           `json:"start_index"`
	EndIndex     int           `json:"end_index"`
	FileCitation *fileCitation `json:"file_citation,omitempty"`
}

type textContent struct {
	Value       string           `json:"value"`
	Annotations []textAnnotation `json:"annotations"`
}

type contentPart struct {
	Type string       `json:"type"`
	Text *textContent `json:"text,omitempty"`
}

type messageDelta struct {
	Delta struct {
		Content []contentPart `json:"content"`
	} `json:"delta"`
}

type message struct {
	Content []contentPart `json:"content"`
}

type runStatus struct {
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type streamError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamRun creates a thread with the question and streams the run.
func (c *Client) StreamRun(ctx context.Context, q assistant.Question) (<-chan assistant.RunEvent, error) {
	body := createThreadAndRunRequest{AssistantID: q.AssistantID, Stream: true}
	msg := threadMessage{Role: "user", Content: q.Text}
	for _, id := range q.FileIDs {
		msg.Attachments = append(msg.Attachments, messageAttachment{
			FileID: id,
			Tools:  []attachmentTool{{Type: "file_search"}},
		})
	}
	body.Thread.Messages = []threadMessage{msg}

	resp, err := c.prepareRequest(ctx).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Accept-Encoding", "identity").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.endpoint("/threads/runs"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"assistant run request failed", err, "")
	}
	if resp.IsError() {
		return nil, errorFromResponse(ctx, resp, "assistant run request failed")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"assistant run request failed: empty response body", nil, "")
	}

	out := make(chan assistant.RunEvent, runChannelBuffer)
	go c.relayRun(ctx, resp, out)
	return out, nil
}

func (c *Client) relayRun(ctx context.Context, resp *resty.Response, out chan<- assistant.RunEvent) {
	defer close(out)
	defer func() {
		if closeErr := resp.RawResponse.Body.Close(); closeErr != nil {
			c.log.Error().Err(closeErr).Msg("unable to close response body")
		}
	}()

	parser := &runParser{}
	emit := func(ev assistant.RunEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	terminal, err := parser.consume(resp.RawResponse.Body, emit)
	if terminal {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = parser.finish()
		if err == nil {
			emit(parser.completed())
			return
		}
	}
	emit(assistant.RunEvent{Kind: assistant.RunEventFailed, Err: err})
}

// runParser turns assistant SSE frames into RunEvents.
type runParser struct {
	event          string
	finalText      string
	annotations    []assistant.Annotation
	messageDone    bool
	runDone        bool
	deltaText      strings.Builder
	deltaCitations []assistant.Annotation
}

// consume reads frames until a terminal event or EOF. It reports whether a
// terminal event was emitted.
func (p *runParser) consume(r io.Reader, emit func(assistant.RunEvent) bool) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			p.event = ""
		case strings.HasPrefix(line, eventPrefix):
			p.event = strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
		case strings.HasPrefix(line, dataPrefix):
			data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
			ev, done := p.handle(p.event, data)
			if ev != nil {
				if !emit(*ev) {
					return true, nil
				}
				if ev.Kind != assistant.RunEventDelta {
					return true, nil
				}
			}
			if done {
				return false, nil
			}
		}
	}
	return false, scanner.Err()
}

// handle processes one data payload. done reports the end of the stream.
func (p *runParser) handle(event, data string) (*assistant.RunEvent, bool) {
	if data == doneMarker || event == "done" {
		return nil, true
	}

	switch event {
	case "thread.message.delta":
		var delta messageDelta
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			return nil, false
		}
		var text strings.Builder
		for _, part := range delta.Delta.Content {
			if part.Type != "text" || part.Text == nil {
				continue
			}
			text.WriteString(part.Text.Value)
			p.deltaCitations = append(p.deltaCitations, toAnnotations(part.Text.Annotations)...)
		}
		if text.Len() == 0 {
			return nil, false
		}
		p.deltaText.WriteString(text.String())
		return &assistant.RunEvent{Kind: assistant.RunEventDelta, Text: text.String()}, false

	case "thread.message.completed":
		var msg message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return nil, false
		}
		var text strings.Builder
		var annotations []assistant.Annotation
		for _, part := range msg.Content {
			if part.Type != "text" || part.Text == nil {
				continue
			}
			text.WriteString(part.Text.Value)
			annotations = append(annotations, toAnnotations(part.Text.Annotations)...)
		}
		p.finalText = text.String()
		p.annotations = annotations
		p.messageDone = true
		return nil, false

	case "thread.run.completed":
		p.runDone = true
		ev := p.completed()
		return &ev, false

	case "thread.run.failed", "thread.run.cancelled", "thread.run.expired", "thread.run.incomplete":
		var run runStatus
		_ = json.Unmarshal([]byte(data), &run)
		reason := strings.TrimPrefix(event, "thread.run.")
		if run.LastError != nil && run.LastError.Message != "" {
			reason = fmt.Sprintf("%s: %s", reason, run.LastError.Message)
		}
		return &assistant.RunEvent{Kind: assistant.RunEventFailed, Err: fmt.Errorf("assistant run %s", reason)}, false

	case "thread.run.requires_action":
		return &assistant.RunEvent{Kind: assistant.RunEventFailed, Err: errors.New("assistant run requires an action this service cannot take")}, false

	case "error":
		var se streamError
		_ = json.Unmarshal([]byte(data), &se)
		msg := se.Message
		if se.Error != nil && se.Error.Message != "" {
			msg = se.Error.Message
		}
		if msg == "" {
			msg = data
		}
		return &assistant.RunEvent{Kind: assistant.RunEventFailed, Err: fmt.Errorf("assistant stream error: %s", msg)}, false
	}
	return nil, false
}

// finish decides how a stream that ended without a terminal run event resolves.
func (p *runParser) finish() error {
	if p.runDone || p.messageDone {
		return nil
	}
	return errors.New("assistant stream ended before the run completed")
}

func (p *runParser) completed() assistant.RunEvent {
	text := p.finalText
	annotations := p.annotations
	if !p.messageDone {
		text = p.deltaText.String()
		annotations = p.deltaCitations
	}
	return assistant.RunEvent{Kind: assistant.RunEventCompleted, Text: text, Annotations: annotations}
}

func toAnnotations(in []textAnnotation) []assistant.Annotation {
	var out []assistant.Annotation
	for _, a := range in {
		if a.Type != "file_citation" || a.FileCitation == nil {
			continue
		}
		out = append(out, assistant.Annotation{
			FileID:     a.FileCitation.FileID,
			Text:       a.Text,
			Quote:      a.FileCitation.Quote,
			StartIndex: a.StartIndex,
			EndIndex:   a.EndIndex,
		})
	}
	return out
}
