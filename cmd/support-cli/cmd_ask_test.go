package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--url", server.URL))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestAskPrintsStreamedAnswerAndSources(t *testing.T) {
	out := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"delta\",\"content\":\"Open \"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"delta\",\"content\":\"Settings.\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"complete\",\"citations\":[{\"file_id\":\"file-1\",\"filename\":\"faq.pdf\"}]}\n\n")
	}, "ask", "How do I export?")

	assert.Equal(t, "Open Settings.\n\nSources:\n  [1] faq.pdf\n", out)
}

func TestAskPrintsFallbackAfterPartialStream(t *testing.T) {
	out := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"delta\",\"content\":\"Partial assist\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"fallback\",\"content\":\"To reset your password, use the login page.\"}\n\n")
	}, "ask", "password")

	assert.Contains(t, out, "Partial assist\nTo reset your password, use the login page.\n")
	assert.Contains(t, out, "(standard answer, the assistant was unavailable)")
}

func TestAskPrintsFallbackWithoutDeltas(t *testing.T) {
	out := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"fallback\",\"content\":\"Email support.\"}\n\n")
	}, "ask", "hello")

	assert.Equal(t, "Email support.\n\n(standard answer, the assistant was unavailable)\n", out)
}
