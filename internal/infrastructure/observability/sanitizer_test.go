package observability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSanitizerHashedLevel(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "clinic")

	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{"email", "write to ana.silva@example.pt please", "[EMAIL:", "ana.silva@example.pt"},
		{"phone", "call me at +351 912 345 678", "[PHONE:", "912 345 678"},
		{"nif", "my NIF is 123456789", "[ID:REDACTED]", "123456789"},
		{"card", "card 4111 1111 1111 1111", "[CARD:REDACTED]", "4111"},
		{"ip", "from 10.1.2.3", "[IP:", "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Text(tt.input)
			assert.Contains(t, out, tt.contains)
			assert.NotContains(t, out, tt.absent)
		})
	}
}

func TestSanitizerHashIsStable(t *testing.T) {
	s := NewSanitizer(PIILevelHashed, "clinic")
	assert.Equal(t, s.Text("a@b.pt"), s.Text("a@b.pt"))
	assert.NotEqual(t, s.Identifier("ana"), NewSanitizer(PIILevelHashed, "other").Identifier("ana"))
	assert.Len(t, s.Identifier("ana"), 8)
}

func TestSanitizerLevels(t *testing.T) {
	assert.Equal(t, "[REDACTED]", NewSanitizer(PIILevelNone, "").Text("hello a@b.pt"))
	assert.Equal(t, "hello a@b.pt", NewSanitizer(PIILevelFull, "").Text("hello a@b.pt"))
	assert.Equal(t, PIILevelHashed, NewSanitizer("bogus", "").Level())
	assert.Empty(t, NewSanitizer(PIILevelNone, "").Identifier(""))
}

func TestAnnotateQuestion(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := provider.Tracer("test").Start(context.Background(), "contact.answer")

	SetSanitizer(NewSanitizer(PIILevelHashed, "clinic"))
	t.Cleanup(func() { SetSanitizer(NewSanitizer(PIILevelHashed, "")) })

	AnnotateQuestion(span, "ana", "reset password for ana@example.pt "+strings.Repeat("x", 300))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.NotContains(t, attrs["contact.question"], "ana@example.pt")
	assert.True(t, strings.HasSuffix(attrs["contact.question"], "…"))
	assert.NotEqual(t, "ana", attrs["contact.username"])
	assert.NotEmpty(t, attrs["contact.question_length"])
}
