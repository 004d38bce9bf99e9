package observability

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync/atomic"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PIILevel controls how question text and names reach traces.
type PIILevel string

const (
	// PIILevelNone drops user content entirely.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed keeps the text but replaces personal data with salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull records text unchanged.
	PIILevelFull PIILevel = "full"
)

const (
	redacted          = "[REDACTED]"
	maxQuestionLength = 256
)

type piiPattern struct {
	label string
	re    *regexp.Regexp
	// hash keeps a correlatable token instead of a fixed placeholder.
	hash bool
}

// Sanitizer scrubs personal data from support questions before they are traced.
type Sanitizer struct {
	level    PIILevel
	salt     string
	patterns []piiPattern
}

func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	switch level {
	case PIILevelNone, PIILevelHashed, PIILevelFull:
	default:
		level = PIILevelHashed
	}
	return &Sanitizer{
		level: level,
		salt:  salt,
		patterns: []piiPattern{
			{label: "EMAIL", re: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), hash: true},
			{label: "CARD", re: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)},
			// Portuguese phone numbers, with or without the country code.
			{label: "PHONE", re: regexp.MustCompile(`(?:\+351[\s-]?)?\b[239]\d{2}[\s-]\d{3}[\s-]\d{3}\b`), hash: true},
			// NIF, SNS user numbers and bare phone numbers share the nine digit shape.
			{label: "ID", re: regexp.MustCompile(`\b\d{9}\b`)},
			{label: "IP", re: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), hash: true},
		},
	}
}

// Level returns the effective level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// Text sanitizes free text such as a question.
func (s *Sanitizer) Text(input string) string {
	switch s.level {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return input
	}

	result := input
	for _, p := range s.patterns {
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			if p.hash {
				return fmt.Sprintf("[%s:%s]", p.label, s.hash(match))
			}
			return fmt.Sprintf("[%s:REDACTED]", p.label)
		})
	}
	return result
}

// Identifier sanitizes a name or user id.
func (s *Sanitizer) Identifier(id string) string {
	if id == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return redacted
	case PIILevelFull:
		return id
	default:
		return s.hash(id)
	}
}

func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}

var defaultSanitizer atomic.Pointer[Sanitizer]

func init() {
	defaultSanitizer.Store(NewSanitizer(PIILevelHashed, ""))
}

// SetSanitizer replaces the sanitizer used for span attributes.
func SetSanitizer(s *Sanitizer) {
	if s != nil {
		defaultSanitizer.Store(s)
	}
}

// AnnotateQuestion records the sanitized asker and question on span.
func AnnotateQuestion(span trace.Span, username, question string) {
	s := defaultSanitizer.Load()
	text := truncate(s.Text(question), maxQuestionLength)
	attrs := []attribute.KeyValue{
		attribute.String("contact.question", text),
		attribute.Int("contact.question_length", utf8.RuneCountInString(question)),
	}
	if username != "" {
		attrs = append(attrs, attribute.String("contact.username", s.Identifier(username)))
	}
	span.SetAttributes(attrs...)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
