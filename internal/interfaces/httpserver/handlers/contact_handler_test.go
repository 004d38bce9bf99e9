package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/domain/contact"
	"framelink-support/internal/interfaces/httpserver/handlers"
	"framelink-support/internal/interfaces/httpserver/responses"
	"framelink-support/internal/utils/platformerrors"
)

type MockContactService struct {
	StreamingFunc func() bool
	StreamFunc    func(ctx context.Context, req contact.Request) (<-chan contact.Event, error)
	AskFunc       func(ctx context.Context, req contact.Request) (*contact.Answer, error)
}

func (m *MockContactService) Streaming() bool {
	if m.StreamingFunc == nil {
		return true
	}
	return m.StreamingFunc()
}

func (m *MockContactService) Stream(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
	return m.StreamFunc(ctx, req)
}

func (m *MockContactService) Ask(ctx context.Context, req contact.Request) (*contact.Answer, error) {
	return m.AskFunc(ctx, req)
}

func setupContactRouter(service handlers.ContactService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewContactHandler(service, zerolog.Nop())
	router := gin.New()
	router.POST("/api/contact", handler.Ask)
	return router
}

func eventsOf(events ...contact.Event) <-chan contact.Event {
	ch := make(chan contact.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func sseFrames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for _, chunk := range strings.Split(body, "\n\n") {
		if chunk == "" {
			continue
		}
		require.True(t, strings.HasPrefix(chunk, "data: "), "unexpected frame %q", chunk)
		var frame map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}

func TestContactHandler_StreamsDeltasAndCompletion(t *testing.T) {
	var got contact.Request
	service := &MockContactService{
		StreamFunc: func(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
			got = req
			return eventsOf(
				contact.Event{Type: contact.EventDelta, Content: "Open "},
				contact.Event{Type: contact.EventDelta, Content: "Settings."},
				contact.Event{Type: contact.EventComplete, ID: "ct_01", Citations: []contact.Citation{
					{FileID: "file-1", Filename: "faq.pdf", Excerpt: "Settings"},
				}},
			), nil
		},
	}
	router := setupContactRouter(service)

	body := `{"username":"ana","subject":"Export","question":"How do I export?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	frames := sseFrames(t, w.Body.String())
	require.Len(t, frames, 3)
	assert.Equal(t, map[string]any{"type": "delta", "content": "Open "}, frames[0])
	assert.Equal(t, "Settings.", frames[1]["content"])
	assert.Equal(t, "complete", frames[2]["type"])
	assert.Equal(t, "ct_01", frames[2]["id"])
	citations, ok := frames[2]["citations"].([]any)
	require.True(t, ok)
	require.Len(t, citations, 1)

	assert.Equal(t, contact.Request{Username: "ana", Subject: "Export", Question: "How do I export?"}, got)
}

func TestContactHandler_StreamSkipsFailedAndSendsFallback(t *testing.T) {
	service := &MockContactService{
		StreamFunc: func(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
			return eventsOf(
				contact.Event{Type: contact.EventFailed, Reason: "upstream unavailable"},
				contact.Event{Type: contact.EventFallback, Content: contact.PasswordResetAnswer, ID: "ct_02"},
			), nil
		},
	}
	router := setupContactRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"question":"password"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	frames := sseFrames(t, w.Body.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "fallback", frames[0]["type"])
	assert.Equal(t, contact.PasswordResetAnswer, frames[0]["content"])
	assert.NotContains(t, w.Body.String(), "upstream unavailable")
}

func TestContactHandler_CompleteWithoutCitationsSendsEmptyArray(t *testing.T) {
	service := &MockContactService{
		StreamFunc: func(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
			return eventsOf(
				contact.Event{Type: contact.EventDelta, Content: "Hi"},
				contact.Event{Type: contact.EventComplete},
			), nil
		},
	}
	router := setupContactRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `data: {"type":"complete","citations":[]}`+"\n\n")
}

func TestContactHandler_RejectsBeforeStreaming(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		errType    platformerrors.ErrorType
		message    string
		wantStatus int
	}{
		{"no api key", `{"question":"hi"}`, platformerrors.ErrorTypeUnavailable, "OpenAI API key not configured", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockContactService{
				StreamFunc: func(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
					return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, tt.errType, tt.message, nil, "")
				},
			}
			router := setupContactRouter(service)

			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			var resp responses.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestContactHandler_BlankQuestionNeverReachesService(t *testing.T) {
	for _, body := range []string{`{"question":"  "}`, `{"username":"ana"}`} {
		t.Run(body, func(t *testing.T) {
			service := &MockContactService{
				StreamFunc: func(ctx context.Context, req contact.Request) (<-chan contact.Event, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			router := setupContactRouter(service)

			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp responses.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Question is required", resp.Error)
		})
	}
}

func TestContactHandler_InvalidJSON(t *testing.T) {
	router := setupContactRouter(&MockContactService{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"question":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactHandler_SyncMode(t *testing.T) {
	service := &MockContactService{
		StreamingFunc: func() bool { return false },
		AskFunc: func(ctx context.Context, req contact.Request) (*contact.Answer, error) {
			return &contact.Answer{ID: "ct_03", Answer: "Use the Export menu.", Source: contact.SourceAssistant}, nil
		},
	}
	router := setupContactRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"question":"export?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp responses.ContactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Question answered successfully", resp.Message)
	assert.Equal(t, "Use the Export menu.", resp.Answer)
	assert.Equal(t, "ct_03", resp.ID)
	assert.NotNil(t, resp.Citations)
}
