package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/contact"
	"framelink-support/internal/domain/upload"
	"framelink-support/internal/interfaces/httpserver"
	"framelink-support/internal/interfaces/web"
)

type stubUploads struct{}

func (stubUploads) Upload(context.Context, upload.FileUpload) (*upload.UploadedFile, error) {
	return nil, errors.New("not used")
}

func (stubUploads) List(context.Context) ([]*upload.UploadedFile, error) {
	return []*upload.UploadedFile{{ID: "upl_1", RemoteFileID: "file-1"}}, nil
}

func (stubUploads) Delete(context.Context, string, string) (int64, error) {
	return 1, nil
}

type stubContacts struct{}

func (stubContacts) Streaming() bool { return false }

func (stubContacts) Stream(context.Context, contact.Request) (<-chan contact.Event, error) {
	return nil, errors.New("not used")
}

func (stubContacts) Ask(context.Context, contact.Request) (*contact.Answer, error) {
	return &contact.Answer{ID: "ct_1", Answer: "hi"}, nil
}

func newServer(t *testing.T, checks ...httpserver.ReadinessCheck) http.Handler {
	t.Helper()
	cfg := &config.Config{ServiceName: "framelink-support", UploadMaxBytes: 1 << 20}
	pages, err := web.NewPages(cfg, zerolog.Nop())
	require.NoError(t, err)
	return httpserver.New(cfg, zerolog.Nop(), stubUploads{}, stubContacts{}, pages, checks).Handler()
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	w := serve(newServer(t), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadyzReportsFailingChecks(t *testing.T) {
	h := newServer(t,
		httpserver.ReadinessCheck{Name: "database", Check: func(context.Context) error { return nil }},
		httpserver.ReadinessCheck{Name: "archive", Check: func(context.Context) error { return errors.New("bucket missing") }},
	)

	w := serve(h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not ready","checks":{"archive":"bucket missing"}}`, w.Body.String())
}

func TestReadyzWithoutChecks(t *testing.T) {
	w := serve(newServer(t), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesAreWired(t *testing.T) {
	h := newServer(t)

	w := serve(h, http.MethodGet, "/api/upload")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"openai_file_id":"file-1"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(h, http.MethodDelete, "/api/upload?fileId=upl_1&openaiFileId=file-1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodGet, "/contact")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-streaming="false"`)

	w = serve(h, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}
