// Package client is a Go client for the support HTTP API.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"framelink-support/internal/domain/upload"
)

// State tracks a submission: idle -> submitting -> success | error.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

const (
	sniffLength      = 3072
	scannerMaxBuffer = 1024 * 1024
	eventStreamType  = "text/event-stream"
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("a submission is already in progress")

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client calls the support API. One submission runs at a time.
type Client struct {
	rest    *resty.Client
	baseURL string
	timeout time.Duration
	log     zerolog.Logger

	mu    sync.Mutex
	state State
}

// New builds a client. timeout bounds connecting and waiting for response
// headers on every call, and the whole exchange for calls that do not stream.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	rest := resty.New()
	if timeout > 0 {
		rest = resty.NewWithTransportSettings(&resty.TransportSettings{
			DialerTimeout:         timeout,
			ResponseHeaderTimeout: timeout,
		})
	}
	return &Client{
		rest:    rest,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     log.With().Str("component", "support-client").Logger(),
		state:   StateIdle,
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// State returns the state of the latest submission.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.state = StateSubmitting
	return nil
}

func (c *Client) end(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		return err
	}
	c.state = StateSuccess
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// Question is the body of a contact submission.
type Question struct {
	Username string `json:"username,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Question string `json:"question"`
}

// Citation points at an uploaded document excerpt.
type Citation struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// Event is one streamed frame.
type Event struct {
	Type      string     `json:"type"`
	Content   string     `json:"content,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	ID        string     `json:"id,omitempty"`
}

// Answer is the final result of Ask.
type Answer struct {
	ID        string
	Text      string
	Citations []Citation
	Fallback  bool
}

type contactResponse struct {
	Message   string     `json:"message"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	ID        string     `json:"id"`
}

// Ask submits q. Streamed frames are passed to onEvent as they arrive; onEvent may be nil.
func (c *Client) Ask(ctx context.Context, q Question, onEvent func(Event)) (*Answer, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	answer, err := c.ask(ctx, q, onEvent)
	return answer, c.end(err)
}

func (c *Client) ask(ctx context.Context, q Question, onEvent func(Event)) (*Answer, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, errors.New("question is required")
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream, application/json").
		SetBody(q).
		SetDoNotParseResponse(true).
		Post(c.url("/api/contact"))
	if err != nil {
		return nil, fmt.Errorf("contact request: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, decodeAPIError(resp.StatusCode(), resp.Body)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	if mediaType == eventStreamType {
		return c.readStream(resp.Body, onEvent)
	}

	var body contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode contact response: %w", err)
	}
	return &Answer{ID: body.ID, Text: body.Answer, Citations: body.Citations}, nil
}

// readStream consumes "data: <json>" records separated by blank lines.
func (c *Client) readStream(r io.Reader, onEvent func(Event)) (*Answer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), scannerMaxBuffer)

	var text strings.Builder
	var record strings.Builder
	answer := &Answer{}

	flush := func() bool {
		data := strings.TrimSpace(record.String())
		record.Reset()
		if data == "" {
			return false
		}
		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			c.log.Warn().Err(err).Str("frame", data).Msg("skipping malformed frame")
			return false
		}
		if onEvent != nil {
			onEvent(ev)
		}
		switch ev.Type {
		case "delta":
			text.WriteString(ev.Content)
		case "complete":
			answer.ID = ev.ID
			answer.Citations = ev.Citations
			answer.Text = text.String()
			return true
		case "fallback":
			answer.ID = ev.ID
			answer.Text = ev.Content
			answer.Fallback = true
			return true
		default:
			c.log.Warn().Str("type", ev.Type).Msg("skipping unknown frame")
		}
		return false
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if flush() {
				return answer, nil
			}
			continue
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			if record.Len() > 0 {
				record.WriteByte('\n')
			}
			record.WriteString(strings.TrimPrefix(value, " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if flush() {
		return answer, nil
	}
	return nil, errors.New("stream ended before the answer completed")
}

// UploadedFile is returned by Upload.
type UploadedFile struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	RecordID string `json:"mongo_id"`
	Status   string `json:"status"`
	Bytes    int64  `json:"bytes"`
}

// Upload sends the file at path.
func (c *Client) Upload(ctx context.Context, path string) (*UploadedFile, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	file, err := c.upload(ctx, path)
	return file, c.end(err)
}

func (c *Client) upload(ctx context.Context, path string) (*UploadedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	contentType := upload.ResolveContentType("", name, head[:n])

	var out UploadedFile
	var apiErr APIError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetMultipartField("file", name, contentType, f).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.url("/api/upload"))
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return nil, &apiErr
	}
	return &out, nil
}

// FileInfo is one row of ListFiles.
type FileInfo struct {
	ID               string    `json:"id"`
	OpenAIFileID     string    `json:"openai_file_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	FileType         string    `json:"file_type"`
	Status           string    `json:"status"`
	UploadedAt       time.Time `json:"uploaded_at"`
	MetadataCache    struct {
		DisplayName   string `json:"display_name"`
		SizeFormatted string `json:"size_formatted"`
		TypeDisplay   string `json:"type_display"`
	} `json:"metadata_cache"`
}

// ListFiles returns the most recent uploads.
func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var out struct {
		Files []FileInfo `json:"files"`
	}
	var apiErr APIError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(c.url("/api/upload"))
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return nil, &apiErr
	}
	return out.Files, nil
}

// DeleteFile removes an upload by its local and remote ids.
func (c *Client) DeleteFile(ctx context.Context, fileID, remoteFileID string) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var out struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	var apiErr APIError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("fileId", fileID).
		SetQueryParam("openaiFileId", remoteFileID).
		SetResult(&out).
		SetError(&apiErr).
		Delete(c.url("/api/upload"))
	if err != nil {
		return 0, fmt.Errorf("delete request: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return 0, &apiErr
	}
	return out.DeletedCount, nil
}

func decodeAPIError(status int, body io.Reader) error {
	apiErr := &APIError{Status: status}
	raw, _ := io.ReadAll(io.LimitReader(body, 64*1024))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
