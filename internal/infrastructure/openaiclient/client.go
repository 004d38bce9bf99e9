package openaiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"framelink-support/internal/config"
	"framelink-support/internal/utils/platformerrors"
)

type httpClientStartsAt struct{}

// Client talks to the OpenAI files, assistants and runs endpoints.
type Client struct {
	api     *openai.Client
	rest    *resty.Client
	apiKey  string
	baseURL string
	log     zerolog.Logger
}

// New builds a client. With an empty API key the client reports itself unconfigured.
func New(cfg *config.Config, log zerolog.Logger) *Client {
	logger := log.With().Str("component", "openai-client").Logger()
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/")

	apiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if baseURL != "" {
		apiCfg.BaseURL = baseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.OpenAIHTTPTimeout}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		rest:    newRestClient(logger),
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: baseURL,
		log:     logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

func newRestClient(log zerolog.Logger) *resty.Client {
	client := resty.New()
	client.AddRequestMiddleware(func(_ *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), httpClientStartsAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, r *resty.Response) error {
		startTime, _ := r.Request.Context().Value(httpClientStartsAt{}).(time.Time)
		log.Debug().
			Str("request_id", platformerrors.RequestIDFromContext(r.Request.Context())).
			Int("status", r.StatusCode()).
			Str("method", r.Request.RawRequest.Method).
			Str("path", r.Request.RawRequest.URL.Path).
			Dur("latency", time.Since(startTime)).
			Msg("HTTP client request")
		return nil
	})
	return client
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	return c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey)).
		SetHeader("OpenAI-Beta", "assistants=v2")
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}
